/*
Package dsl provides a Go DSL for building Arbor decision tree documents in code.

It produces the same document.Document that the YAML and JSON codecs do, so a
tree built here compiles, validates and evaluates exactly like one loaded from
a file. This is useful for generated trees, unit tests and IDE completion.

Example usage:

	engine, err := dsl.New("shipping").
		Integer("weight", 0).
		Boolean("urgent").
		Result("Shipping",
			dsl.String("carrier", "post", "courier", "freight"),
			dsl.Bool("express").Default(false),
		).
		Tree(
			dsl.When("weight", 0).Children(
				dsl.When("urgent", true).Then(dsl.Values{"carrier": "courier", "express": true}),
				dsl.When("urgent", false).Then(dsl.Values{"carrier": "post"}),
			),
			dsl.When("weight", 30).Then(dsl.Values{"carrier": "freight"}),
		).
		Build(arbor.WithOpenResults(true))
*/
package dsl
