package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/document"
)

// Attr declares one result attribute.
type Attr struct {
	kind   string
	name   string
	values []string
	dflt   *document.Scalar
}

// String declares an attribute restricted to values, or free text when none are given.
func String(name string, values ...string) Attr {
	return Attr{kind: "string", name: name, values: values}
}

// Text declares a free-text attribute.
func Text(name string) Attr { return Attr{kind: "text", name: name} }

// Bool declares a boolean attribute.
func Bool(name string) Attr { return Attr{kind: "boolean", name: name} }

// Int declares an integer attribute.
func Int(name string) Attr { return Attr{kind: "integer", name: name} }

// Default sets the value used when a leaf omits the attribute.
func (a Attr) Default(v any) Attr {
	a.dflt = document.S(fmt.Sprint(v))
	return a
}

func (a Attr) def() document.AttributeDef {
	spec := &document.AttributeSpec{Name: a.name, Default: a.dflt}
	for _, v := range a.values {
		spec.Values = append(spec.Values, document.Scalar(v))
	}
	switch a.kind {
	case "boolean":
		return document.AttributeDef{BooleanAttribute: spec}
	case "integer":
		return document.AttributeDef{IntegerAttribute: spec}
	case "text":
		return document.AttributeDef{TextAttribute: spec}
	default:
		return document.AttributeDef{StringAttribute: spec}
	}
}

// Values are the attribute values of a result leaf.
type Values map[string]any

// BranchBuilder provides a fluent API for one branch of the tree.
type BranchBuilder struct {
	el       document.Element
	children []*BranchBuilder
	targets  map[string]bool
}

// When starts a branch taken when input has value.
func When(input string, value any) *BranchBuilder {
	return &BranchBuilder{
		el:      document.Element{Input: input, Value: document.Scalar(fmt.Sprint(value))},
		targets: make(map[string]bool),
	}
}

// Then ends the branch in a result leaf.
func (br *BranchBuilder) Then(values Values) *BranchBuilder {
	res := make(map[string]document.Scalar, len(values))
	for k, v := range values {
		res[k] = document.Scalar(fmt.Sprint(v))
	}
	br.el.Result = res
	br.targets["result"] = true
	return br
}

// Same makes the branch share the target of the sibling branch for value.
func (br *BranchBuilder) Same(value any) *BranchBuilder {
	br.el.Ref = fmt.Sprint(value)
	br.targets["ref"] = true
	return br
}

// Children continues the branch with a nested decision.
func (br *BranchBuilder) Children(children ...*BranchBuilder) *BranchBuilder {
	br.children = append(br.children, children...)
	br.targets["children"] = true
	return br
}

func (br *BranchBuilder) element() (document.Element, error) {
	el := br.el
	where := fmt.Sprintf("branch %s=%s", el.Input, el.Value)
	switch {
	case len(br.targets) == 0:
		return el, fmt.Errorf("%s: needs a result, a reference or children", where)
	case len(br.targets) > 1:
		return el, fmt.Errorf("%s: set exactly one of result, reference or children", where)
	}

	for _, c := range br.children {
		child, err := c.element()
		if err != nil {
			return el, fmt.Errorf("%s: %w", where, err)
		}
		el.Children = append(el.Children, child)
	}
	return el, nil
}
