package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind names reported by TypeMismatchError.
const (
	FactBoolean = "Boolean"
	FactInteger = "Integer"
	FactString  = "String"
)

// Facts is the key/value store a tree is evaluated against.
// Implementations only need to report presence; typed reads are provided by
// the String, Int and Bool helpers.
type Facts interface {
	Get(key string) (any, bool)
}

// MapFacts is the default Facts implementation.
type MapFacts map[string]any

// Get implements Facts.
func (m MapFacts) Get(key string) (any, bool) {
	v, ok := m[key]
	if ok && v == nil {
		return nil, false
	}
	return v, ok
}

// Put stores a fact and returns the receiver for chaining.
func (m MapFacts) Put(key string, value any) MapFacts {
	m[key] = value
	return m
}

// String reads a string fact.
func String(f Facts, key string) (string, bool, error) {
	raw, ok := f.Get(key)
	if !ok {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, mismatch(key, raw, FactString)
	}
	return s, true, nil
}

// Bool reads a boolean fact.
func Bool(f Facts, key string) (bool, bool, error) {
	raw, ok := f.Get(key)
	if !ok {
		return false, false, nil
	}
	b, isBool := raw.(bool)
	if !isBool {
		return false, true, mismatch(key, raw, FactBoolean)
	}
	return b, true, nil
}

// Int reads an integer fact. Any Go integer kind is accepted, as are
// json.Number values and whole float64 values produced by JSON decoding.
func Int(f Facts, key string) (int64, bool, error) {
	raw, ok := f.Get(key)
	if !ok {
		return 0, false, nil
	}
	v, isInt := toInt64(raw)
	if !isInt {
		return 0, true, mismatch(key, raw, FactInteger)
	}
	return v, true, nil
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func mismatch(key string, value any, expected string) *TypeMismatchError {
	return &TypeMismatchError{
		Field:    key,
		Value:    value,
		Expected: expected,
		Actual:   KindOf(value),
	}
}

// KindOf names the fact kind of a value for diagnostics.
func KindOf(v any) string {
	if _, ok := v.(bool); ok {
		return FactBoolean
	}
	if _, ok := v.(string); ok {
		return FactString
	}
	if _, ok := toInt64(v); ok {
		return FactInteger
	}
	return fmt.Sprintf("%T", v)
}

// ParseFacts converts textual key=value pairs (CLI flags, query strings) into
// typed facts using the catalog's declared kinds. Unknown keys stay strings.
func ParseFacts(raw map[string]string, catalog *Catalog) (MapFacts, error) {
	facts := make(MapFacts, len(raw))
	for key, value := range raw {
		t, ok := catalog.Lookup(key)
		if !ok {
			facts[key] = value
			continue
		}
		switch t.Kind {
		case KindBoolean:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("fact %q: %w", key, mismatch(key, value, FactBoolean))
			}
			facts[key] = b
		case KindIntegerRange:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("fact %q: %w", key, mismatch(key, value, FactInteger))
			}
			facts[key] = n
		default:
			facts[key] = value
		}
	}
	return facts, nil
}
