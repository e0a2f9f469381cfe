package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Type defines the contract for fact validation.
// Implementations determine how a single fact value is checked.
type Type interface {
	// Name returns the textual form of the type (e.g., "boolean", "integer[0..9]").
	Name() string
	// Validate checks if the value stored under key conforms to this type.
	Validate(key string, value any) error
}

// --- Built-in Type Implementations ---

// BoolType validates boolean facts.
type BoolType struct{}

func (t *BoolType) Name() string { return "boolean" }

func (t *BoolType) Validate(key string, value any) error {
	_, _, err := domain.Bool(domain.MapFacts{key: value}, key)
	return err
}

// IntType validates integer facts within an inclusive range.
type IntType struct {
	Min, Max int64
}

func (t *IntType) Name() string {
	if t.Min == domain.Unbounded && t.Max == domain.UnboundedMax {
		return "integer"
	}
	return fmt.Sprintf("integer[%s..%s]", domain.FormatBound(t.Min), domain.FormatBound(t.Max))
}

func (t *IntType) Validate(key string, value any) error {
	n, _, err := domain.Int(domain.MapFacts{key: value}, key)
	if err != nil {
		return err
	}
	if n < t.Min || n > t.Max {
		return &domain.NoMappingError{Input: key, Value: n}
	}
	return nil
}

// EnumType validates string facts against a set of values. Unknown values
// are accepted when the type has a default to fall back on.
type EnumType struct {
	Values  []string
	Default string
}

func (t *EnumType) Name() string {
	return "string{" + strings.Join(t.Values, ",") + "}"
}

func (t *EnumType) Validate(key string, value any) error {
	s, _, err := domain.String(domain.MapFacts{key: value}, key)
	if err != nil {
		return err
	}
	if t.Default != "" {
		return nil
	}
	for _, v := range t.Values {
		if v == s {
			return nil
		}
	}
	return &domain.NoMappingError{Input: key, Value: s}
}

// --- Factory Functions ---

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Int creates an integer type validator bounded by min and max.
func Int(min, max int64) Type { return &IntType{Min: min, Max: max} }

// Enum creates an enumerated string type validator without default.
func Enum(values ...string) Type { return &EnumType{Values: values} }

// FromInputType derives the validator for a declared input type.
func FromInputType(it *domain.InputType) Type {
	switch it.Kind {
	case domain.KindBoolean:
		return Bool()
	case domain.KindIntegerRange:
		return Int(it.Min, it.Max)
	default:
		return &EnumType{Values: it.Values, Default: it.Default}
	}
}

// FromCatalog builds a schema with one entry per declared input type.
func FromCatalog(c *domain.Catalog) Schema {
	s := make(Schema, c.Len())
	for _, it := range c.Types() {
		s[it.Name] = FromInputType(it)
	}
	return s
}
