/*
Package arbor compiles declaratively authored decision trees into immutable, validated trees and evaluates runtime facts against them to produce typed result objects.

A tree branches on typed inputs (booleans, integer ranges and enumerated strings) and ends in leaves that describe a result. Documents are authored in YAML or JSON, loaded from files, Loam, Redis or memory, and compiled once. Every structural mistake is reported at compile time as a configuration error; evaluation only ever fails because of the facts it was given.

# Concept

  - Compile Once: Input types, the result schema, node mappings and aliases are checked before a tree exists.
  - Evaluate Anywhere: A compiled tree is immutable and may be shared by any number of goroutines.
  - Fresh Results: Each evaluation constructs a new result instance through a registered result type.
  - Hexagonal Architecture: Core logic is decoupled from adapters (Storage, HTTP, MCP, CLI).

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/document"
		"github.com/aretw0/arbor/pkg/domain"
	)

	func main() {
		doc, err := document.ParseFile("routing.yaml")
		if err != nil {
			log.Fatal(err)
		}

		eng, err := arbor.New(doc, arbor.WithOpenResults(true))
		if err != nil {
			log.Fatal(err) // *domain.ConfigurationError
		}

		out, err := eng.Evaluate(context.Background(), domain.MapFacts{"range": 7, "flag": true})
		if err != nil {
			log.Fatal(err) // missing fact, type mismatch or no mapping
		}
		fmt.Println(out)
	}

To serve many documents, wrap a loader in a Library and call Load; Watch keeps it current as documents change.
*/
package arbor
