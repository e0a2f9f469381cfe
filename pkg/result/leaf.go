package result

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Leaf is the terminal branch of a tree. It keeps the raw configured values
// and builds a new result instance on every call to Create.
type Leaf struct {
	spec   *Spec
	values map[string]string
}

// Spec returns the shared result spec.
func (l *Leaf) Spec() *Spec { return l.spec }

// Values returns a copy of the configured raw values.
func (l *Leaf) Values() map[string]string {
	out := make(map[string]string, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// Create default-constructs a result and applies every attribute of the spec,
// configured or not. Failures are ResultConstructionErrors.
func (l *Leaf) Create() (out any, err error) {
	typeName := l.spec.typ.Name()
	attribute := ""
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &domain.ResultConstructionError{Type: typeName, Attribute: attribute, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	inst, err := l.spec.typ.New()
	if err != nil {
		return nil, &domain.ResultConstructionError{Type: typeName, Err: err}
	}

	for _, attr := range l.spec.Attributes() {
		attribute = attr.Name
		raw, present := l.values[attr.Name]
		value, err := attr.Value(raw, present)
		if err != nil {
			return nil, &domain.ResultConstructionError{Type: typeName, Attribute: attr.Name, Err: err}
		}
		if err := attr.setter(inst, value); err != nil {
			return nil, &domain.ResultConstructionError{Type: typeName, Attribute: attr.Name, Err: err}
		}
	}
	return inst, nil
}

// String renders the leaf as Type{a=1, b=x} with keys sorted.
func (l *Leaf) String() string {
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+l.values[k])
	}
	return l.spec.typ.Name() + "{" + strings.Join(parts, ", ") + "}"
}

// LeafBuilder collects and validates the raw values of a Leaf.
type LeafBuilder struct {
	spec   *Spec
	values map[string]string
}

// NewLeafBuilder starts a leaf bound to spec.
func NewLeafBuilder(spec *Spec) *LeafBuilder {
	return &LeafBuilder{spec: spec, values: make(map[string]string)}
}

// Set configures one attribute. Unknown attributes and values rejected by the
// attribute's rule fail with a ConfigurationError.
func (b *LeafBuilder) Set(name, raw string) error {
	if err := b.spec.ValidateAttribute(name); err != nil {
		return err
	}
	attr := b.spec.attrs[name]
	if err := attr.Validate(raw); err != nil {
		return err
	}
	b.values[name] = raw
	return nil
}

// Build freezes the leaf.
func (b *LeafBuilder) Build() *Leaf {
	values := make(map[string]string, len(b.values))
	for k, v := range b.values {
		values[k] = v
	}
	return &Leaf{spec: b.spec, values: values}
}
