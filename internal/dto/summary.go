package dto

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/schema"
)

// TreeSummary is the wire form of a loaded tree, shared by the HTTP and MCP adapters.
type TreeSummary struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Root        string        `json:"root"`
	Depth       int           `json:"depth"`
	Inputs      []InputType   `json:"inputs"`
	Branches    []string      `json:"branches"`
	Facts       schema.Schema `json:"facts"`
	Result      *ResultType   `json:"result,omitempty"`
}

// InputType describes one declared input type.
type InputType struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Min     string   `json:"min,omitempty"`
	Max     string   `json:"max,omitempty"`
	Values  []string `json:"values,omitempty"`
	Default string   `json:"default,omitempty"`
}

// ResultType describes the result class and its attributes.
type ResultType struct {
	Class      string            `json:"class"`
	Attributes []ResultAttribute `json:"attributes"`
}

// ResultAttribute describes one result attribute.
type ResultAttribute struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Values  []string `json:"values,omitempty"`
	Default string   `json:"default,omitempty"`
}

// Summarize builds the summary of the evaluator loaded under id.
func Summarize(id string, ev ports.Evaluator) TreeSummary {
	dt := ev.Tree()
	s := TreeSummary{
		ID:       id,
		Root:     dt.Root().Name(),
		Depth:    dt.Depth(),
		Inputs:   make([]InputType, 0, dt.InputTypes().Len()),
		Branches: dt.Inputs(),
		Facts:    schema.FromCatalog(dt.InputTypes()),
	}
	if doc := ev.Document(); doc != nil {
		s.Name = doc.Name
		s.Description = doc.Description
	}

	for _, it := range dt.InputTypes().Types() {
		in := InputType{Name: it.Name, Kind: string(it.Kind)}
		switch it.Kind {
		case domain.KindIntegerRange:
			in.Min = domain.FormatBound(it.Min)
			in.Max = domain.FormatBound(it.Max)
		case domain.KindStringEnum:
			in.Values = it.Values
			in.Default = it.Default
		}
		s.Inputs = append(s.Inputs, in)
	}

	if spec := dt.ResultSpec(); spec != nil {
		rt := &ResultType{Class: spec.Type().Name()}
		for _, a := range spec.Attributes() {
			attr := ResultAttribute{Name: a.Name, Kind: string(a.Kind), Values: a.Values}
			if def, ok := a.Default(); ok {
				attr.Default = def
			}
			rt.Attributes = append(rt.Attributes, attr)
		}
		s.Result = rt
	}
	return s
}
