package result

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
)

// Spec binds a result Type to the attributes a document declares.
// It is immutable and shared by every Leaf of the tree.
type Spec struct {
	typ   *Type
	attrs map[string]*Attribute
	order []string
}

// Type returns the target result type.
func (s *Spec) Type() *Type { return s.typ }

// Attribute returns the declared attribute named name.
func (s *Spec) Attribute(name string) (*Attribute, bool) {
	a, ok := s.attrs[name]
	return a, ok
}

// Attributes returns all declared attributes sorted by name.
func (s *Spec) Attributes() []*Attribute {
	out := make([]*Attribute, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.attrs[name])
	}
	return out
}

// ValidateAttribute checks that name is declared on the spec.
func (s *Spec) ValidateAttribute(name string) error {
	if _, ok := s.attrs[name]; !ok {
		return domain.Configf("", "Result spec has no mapping for attribute %q", name)
	}
	return nil
}

// SpecBuilder assembles a Spec.
type SpecBuilder struct {
	typ   *Type
	attrs map[string]*Attribute
}

// NewSpecBuilder starts a spec for t.
func NewSpecBuilder(t *Type) *SpecBuilder {
	return &SpecBuilder{typ: t, attrs: make(map[string]*Attribute)}
}

// Add declares an attribute. The result type must expose a setter for it and
// its default, if any, must satisfy the attribute's own rule.
func (b *SpecBuilder) Add(a *Attribute) error {
	setter, ok := b.typ.Setter(a.Name)
	if !ok {
		return domain.Configf("", "Result attribute %s not defined on result class %s", a.Name, b.typ.Name())
	}
	if _, dup := b.attrs[a.Name]; dup {
		return domain.Configf("", "Result attribute %q is declared more than once", a.Name)
	}
	switch a.Kind {
	case KindBoolean, KindInteger, KindStringEnum, KindFreeText:
	default:
		return domain.Configf("", "Unknown result attribute type")
	}
	if err := a.validateDefault(); err != nil {
		return err
	}

	bound := *a
	bound.setter = setter
	b.attrs[a.Name] = &bound
	return nil
}

// Build freezes the spec.
func (b *SpecBuilder) Build() *Spec {
	attrs := make(map[string]*Attribute, len(b.attrs))
	order := make([]string, 0, len(b.attrs))
	for name, a := range b.attrs {
		attrs[name] = a
		order = append(order, name)
	}
	sort.Strings(order)
	return &Spec{typ: b.typ, attrs: attrs, order: order}
}
