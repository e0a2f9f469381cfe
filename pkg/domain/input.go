package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// InputKind identifies the value domain of an InputType.
type InputKind string

const (
	KindBoolean      InputKind = "boolean"
	KindIntegerRange InputKind = "integer"
	KindStringEnum   InputKind = "string"
)

// ReservedInputName cannot be used as an input-type name.
const ReservedInputName = "result"

// UnboundedLiteral is the textual form of an open integer bound.
const UnboundedLiteral = "unbounded"

const (
	// Unbounded is the sentinel for an open lower bound (and the catch-all threshold).
	Unbounded int64 = math.MinInt64
	// UnboundedMax is the sentinel for an open upper bound.
	UnboundedMax int64 = math.MaxInt64
)

// InputType is a named value domain that tree nodes branch on.
type InputType struct {
	Name string    `json:"name"`
	Kind InputKind `json:"kind"`

	// Integer range bounds (KindIntegerRange).
	Min int64 `json:"min,omitempty"`
	Max int64 `json:"max,omitempty"`

	// Enumerated values and optional fallback (KindStringEnum).
	Values  []string `json:"values,omitempty"`
	Default string   `json:"default,omitempty"`
}

// NewBooleanType declares a true/false input.
func NewBooleanType(name string) *InputType {
	return &InputType{Name: name, Kind: KindBoolean}
}

// NewIntegerType declares an integer input bounded by [min, max].
// Use Unbounded / UnboundedMax for open bounds.
func NewIntegerType(name string, min, max int64) *InputType {
	return &InputType{Name: name, Kind: KindIntegerRange, Min: min, Max: max}
}

// NewEnumType declares a string input restricted to values.
// def may be empty; otherwise it must be one of values.
func NewEnumType(name string, values []string, def string) (*InputType, error) {
	if def != "" && !slices.Contains(values, def) {
		return nil, &ConfigurationError{
			Input: name,
			Msg:   fmt.Sprintf("Default value %q of input-type %q is not one of its values", def, name),
		}
	}
	return &InputType{Name: name, Kind: KindStringEnum, Values: slices.Clone(values), Default: def}, nil
}

// HasDefault reports whether an enum input declares a fallback value.
func (t *InputType) HasDefault() bool {
	return t.Kind == KindStringEnum && t.Default != ""
}

// HasValue reports whether v is one of the enumerated values.
func (t *InputType) HasValue(v string) bool {
	return slices.Contains(t.Values, v)
}

// FormatBound renders an input-type bound, mapping both sentinels back to "unbounded".
func FormatBound(v int64) string {
	if v == Unbounded || v == UnboundedMax {
		return UnboundedLiteral
	}
	return strconv.FormatInt(v, 10)
}

// FormatThreshold renders an integer mapping key. Only the catch-all Unbounded
// is written as "unbounded".
func FormatThreshold(v int64) string {
	if v == Unbounded {
		return UnboundedLiteral
	}
	return strconv.FormatInt(v, 10)
}

// ParseBound parses an input-type bound. An omitted or "unbounded" bound maps to fallback.
func ParseBound(raw string, fallback int64) (int64, error) {
	if raw == "" || raw == UnboundedLiteral {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// ParseThreshold parses an integer mapping key: "unbounded" for the catch-all
// or a base-10 integer. A missing value is an error.
func ParseThreshold(raw string) (int64, error) {
	if raw == UnboundedLiteral {
		return Unbounded, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
