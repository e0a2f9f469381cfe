package result

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
)

// Kind is the value kind of a result attribute.
type Kind string

const (
	KindBoolean    Kind = "boolean"
	KindInteger    Kind = "integer"
	KindStringEnum Kind = "string"
	KindFreeText   Kind = "text"
)

// Attribute describes one settable attribute of a result type.
type Attribute struct {
	Name   string
	Kind   Kind
	Values []string // allowed values for KindStringEnum

	def        string
	hasDefault bool
	setter     Setter
}

// BooleanAttribute declares a "true"/"false" attribute. It defaults to false.
func BooleanAttribute(name string) *Attribute {
	return &Attribute{Name: name, Kind: KindBoolean}
}

// IntegerAttribute declares a signed integer attribute.
func IntegerAttribute(name string) *Attribute {
	return &Attribute{Name: name, Kind: KindInteger}
}

// EnumAttribute declares an attribute restricted to values.
func EnumAttribute(name string, values ...string) *Attribute {
	return &Attribute{Name: name, Kind: KindStringEnum, Values: slices.Clone(values)}
}

// TextAttribute declares a free-text attribute.
func TextAttribute(name string) *Attribute {
	return &Attribute{Name: name, Kind: KindFreeText}
}

// WithDefault sets the raw value used when a leaf does not configure the attribute.
// The default is validated when the attribute is added to a SpecBuilder.
func (a *Attribute) WithDefault(raw string) *Attribute {
	a.def = raw
	a.hasDefault = true
	return a
}

// Default returns the declared default, if any.
func (a *Attribute) Default() (string, bool) {
	return a.def, a.hasDefault
}

// Validate checks a raw configured value against the attribute's rule.
func (a *Attribute) Validate(raw string) error {
	switch a.Kind {
	case KindBoolean:
		if raw != "true" && raw != "false" {
			return domain.Configf("", "Invalid value %q for boolean result attribute %q", raw, a.Name)
		}
	case KindInteger:
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return domain.Configf("", "Invalid value %q for integer attribute %q", raw, a.Name)
		}
	case KindStringEnum:
		if !slices.Contains(a.Values, raw) {
			return domain.Configf("", "Invalid value %q for string result attribute %q", raw, a.Name)
		}
	case KindFreeText:
	default:
		return domain.Configf("", "Unknown result attribute type %q", a.Kind)
	}
	return nil
}

// Value converts a raw value into the attribute's Go value. When the raw value
// is absent the declared default is used, or the kind's zero value.
func (a *Attribute) Value(raw string, present bool) (any, error) {
	if !present {
		if !a.hasDefault {
			return a.zero(), nil
		}
		raw = a.def
	}
	switch a.Kind {
	case KindBoolean:
		return strconv.ParseBool(raw)
	case KindInteger:
		return strconv.ParseInt(raw, 10, 64)
	default:
		return raw, nil
	}
}

func (a *Attribute) zero() any {
	switch a.Kind {
	case KindBoolean:
		return false
	case KindInteger:
		return int64(0)
	default:
		return ""
	}
}

func (a *Attribute) validateDefault() error {
	if !a.hasDefault {
		return nil
	}
	if err := a.Validate(a.def); err != nil {
		return domain.Configf("", "Invalid default value %q for %s result attribute %q", a.def, a.Kind, a.Name)
	}
	return nil
}

func (a *Attribute) String() string {
	return fmt.Sprintf("%s(%s)", a.Name, a.Kind)
}
