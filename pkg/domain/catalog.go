package domain

import "fmt"

// Catalog is the ordered, name-unique set of input types declared by a tree.
// It is built once during compilation and read-only afterwards.
type Catalog struct {
	order []string
	types map[string]*InputType
}

// NewCatalog creates a catalog with the given types.
func NewCatalog(types ...*InputType) (*Catalog, error) {
	c := &Catalog{types: make(map[string]*InputType, len(types))}
	for _, t := range types {
		if err := c.Add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers an input type. The reserved name "result" and duplicates are rejected.
func (c *Catalog) Add(t *InputType) error {
	if c.types == nil {
		c.types = make(map[string]*InputType)
	}
	if t.Name == ReservedInputName {
		return &ConfigurationError{
			Input: t.Name,
			Msg:   fmt.Sprintf("No input-type may be named %q since it is a reserved keyword", ReservedInputName),
		}
	}
	if t.Name == "" {
		return &ConfigurationError{Msg: "Input-type name may not be empty"}
	}
	if _, exists := c.types[t.Name]; exists {
		return &ConfigurationError{
			Input: t.Name,
			Msg:   fmt.Sprintf("Input-type %q is declared more than once", t.Name),
		}
	}
	c.types[t.Name] = t
	c.order = append(c.order, t.Name)
	return nil
}

// Lookup returns the input type registered under name.
func (c *Catalog) Lookup(name string) (*InputType, bool) {
	if c == nil {
		return nil, false
	}
	t, ok := c.types[name]
	return t, ok
}

// Types returns all input types in declaration order.
func (c *Catalog) Types() []*InputType {
	if c == nil {
		return nil
	}
	out := make([]*InputType, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.types[name])
	}
	return out
}

// Len returns the number of declared input types.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}
