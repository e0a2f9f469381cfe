package result

import (
	"fmt"
	"sort"
)

// Setter assigns an already converted attribute value to a result instance.
type Setter func(target any, value any) error

// Type is the construction and mutation capability of one result type.
type Type struct {
	name    string
	newFn   func() any
	setters map[string]Setter
	open    bool
}

// NewType assembles a Type from a constructor and a setter table.
func NewType(name string, newFn func() any, setters map[string]Setter) *Type {
	table := make(map[string]Setter, len(setters))
	for k, v := range setters {
		table[k] = v
	}
	return &Type{name: name, newFn: newFn, setters: table}
}

// Name returns the identifier documents use to refer to the type.
func (t *Type) Name() string { return t.name }

// Open reports whether the type accepts any attribute name.
func (t *Type) Open() bool { return t.open }

// New default-constructs a fresh instance.
func (t *Type) New() (any, error) {
	if t.newFn == nil {
		return nil, fmt.Errorf("type %q has no constructor", t.name)
	}
	inst := t.newFn()
	if inst == nil {
		return nil, fmt.Errorf("constructor of %q returned nil", t.name)
	}
	return inst, nil
}

// Setter returns the setter bound to an attribute name.
func (t *Type) Setter(attr string) (Setter, bool) {
	if t.open {
		return recordSetter(attr), true
	}
	s, ok := t.setters[attr]
	return s, ok
}

// Attributes lists the attribute names with a registered setter, sorted.
func (t *Type) Attributes() []string {
	names := make([]string, 0, len(t.setters))
	for k := range t.setters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Definition builds a Type for the Go struct T.
type Definition[T any] struct {
	name    string
	setters map[string]Setter
}

// Define starts a Type definition for T. Instances are created with new(T).
func Define[T any](name string) *Definition[T] {
	return &Definition[T]{name: name, setters: make(map[string]Setter)}
}

// String registers a setter for a string-valued attribute (enum or free text).
func (d *Definition[T]) String(attr string, set func(*T, string)) *Definition[T] {
	d.setters[attr] = typedSetter(attr, set)
	return d
}

// Bool registers a setter for a boolean attribute.
func (d *Definition[T]) Bool(attr string, set func(*T, bool)) *Definition[T] {
	d.setters[attr] = typedSetter(attr, set)
	return d
}

// Int registers a setter for an integer attribute.
func (d *Definition[T]) Int(attr string, set func(*T, int64)) *Definition[T] {
	d.setters[attr] = typedSetter(attr, set)
	return d
}

// Build returns the finished Type.
func (d *Definition[T]) Build() *Type {
	return NewType(d.name, func() any { return new(T) }, d.setters)
}

func typedSetter[T any, V any](attr string, set func(*T, V)) Setter {
	return func(target any, value any) error {
		inst, ok := target.(*T)
		if !ok {
			return fmt.Errorf("target is %T, want %T", target, inst)
		}
		v, ok := value.(V)
		if !ok {
			var want V
			return fmt.Errorf("attribute %q got %T, want %T", attr, value, want)
		}
		set(inst, v)
		return nil
	}
}

// Record is the instance type of open result types.
type Record map[string]any

// RecordType returns an open Type whose instances are Records.
// Every attribute name is accepted.
func RecordType(name string) *Type {
	return &Type{
		name:  name,
		newFn: func() any { return Record{} },
		open:  true,
	}
}

func recordSetter(attr string) Setter {
	return func(target any, value any) error {
		rec, ok := target.(Record)
		if !ok {
			return fmt.Errorf("target is %T, want result.Record", target)
		}
		rec[attr] = value
		return nil
	}
}
