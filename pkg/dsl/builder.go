package dsl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/document"
)

// Builder assembles a document.
type Builder struct {
	doc  document.Document
	errs []error
}

// New creates a builder for a document called name.
func New(name string) *Builder {
	return &Builder{doc: document.Document{Name: name}}
}

// Describe sets the document description.
func (b *Builder) Describe(text string) *Builder {
	b.doc.Description = text
	return b
}

// Boolean declares a boolean input.
func (b *Builder) Boolean(name string) *Builder {
	b.doc.InputTypes = append(b.doc.InputTypes, document.InputTypeDef{
		BooleanType: &document.BooleanTypeDef{Name: name},
	})
	return b
}

// Integer declares an integer input. bounds holds the optional min and max;
// omitted bounds are unbounded.
func (b *Builder) Integer(name string, bounds ...int64) *Builder {
	def := &document.IntegerTypeDef{Name: name}
	switch len(bounds) {
	case 0:
	case 1:
		def.Min = bound(bounds[0])
	case 2:
		def.Min, def.Max = bound(bounds[0]), bound(bounds[1])
	default:
		b.errs = append(b.errs, fmt.Errorf("integer input %q: expected at most min and max, got %d bounds", name, len(bounds)))
	}
	b.doc.InputTypes = append(b.doc.InputTypes, document.InputTypeDef{IntegerType: def})
	return b
}

// Enum declares a string input restricted to values.
func (b *Builder) Enum(name string, values ...string) *Builder {
	return b.enum(name, "", values)
}

// EnumWithDefault declares a string input whose unmatched facts fall back to def.
func (b *Builder) EnumWithDefault(name, def string, values ...string) *Builder {
	return b.enum(name, def, values)
}

func (b *Builder) enum(name, def string, values []string) *Builder {
	vals := make([]document.EnumValue, len(values))
	for i, v := range values {
		vals[i] = document.EnumValue{Text: v}
	}
	b.doc.InputTypes = append(b.doc.InputTypes, document.InputTypeDef{
		StringType: &document.StringTypeDef{Name: name, Values: vals, Default: def},
	})
	return b
}

// Result declares the result class and its attributes.
func (b *Builder) Result(class string, attrs ...Attr) *Builder {
	rt := &document.ResultTypeDef{Class: class}
	for _, a := range attrs {
		rt.Attributes = append(rt.Attributes, a.def())
	}
	b.doc.ResultType = rt
	return b
}

// Tree appends top-level branches.
func (b *Builder) Tree(branches ...*BranchBuilder) *Builder {
	for _, br := range branches {
		el, err := br.element()
		if err != nil {
			b.errs = append(b.errs, err)
			continue
		}
		b.doc.Tree = append(b.doc.Tree, el)
	}
	return b
}

// Document returns the assembled document. It is not compiled; use Build or
// arbor.New for that.
func (b *Builder) Document() (*document.Document, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("document %s: %w", b.doc.Name, err)
	}
	doc := b.doc
	return &doc, nil
}

// Build compiles the document into an engine.
func (b *Builder) Build(opts ...arbor.Option) (*arbor.Engine, error) {
	doc, err := b.Document()
	if err != nil {
		return nil, err
	}
	return arbor.New(doc, opts...)
}

// Store places the document into an in-memory store keyed by its name,
// ready for an arbor.Library.
func (b *Builder) Store() (*memory.Store, error) {
	doc, err := b.Document()
	if err != nil {
		return nil, err
	}
	store, err := memory.NewFromDocuments(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory store: %w", err)
	}
	return store, nil
}

func bound(v int64) document.Scalar {
	return document.Scalar(strconv.FormatInt(v, 10))
}
