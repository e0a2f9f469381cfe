package schema

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
)

// Schema is a map of fact names to their expected types.
// Example: {"flag": Bool(), "range": Int(-5, 5), "letters": Enum("a", "b")}
type Schema map[string]Type

func (s Schema) keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every fact present in facts against the schema.
// Absent facts are not errors; facts unknown to the schema are ignored.
// Failures are reported in key order.
func Validate(schema Schema, facts domain.Facts) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error
	for _, key := range schema.keys() {
		value, exists := facts.Get(key)
		if !exists {
			continue
		}
		if err := schema[key].Validate(key, value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Value: value, Err: err})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateFields validates only specific fields from facts against the schema.
// Missing fields are treated as an error.
func ValidateFields(schema Schema, facts domain.Facts, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	var errs []error
	for _, fieldName := range fields {
		fieldType, exists := schema[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{Key: fieldName, Reason: "not defined in schema"})
			continue
		}

		value, fieldExists := facts.Get(fieldName)
		if !fieldExists {
			errs = append(errs, &ValidationError{
				Key: fieldName,
				Err: &domain.MissingFactError{Fact: fieldName},
			})
			continue
		}

		if err := fieldType.Validate(fieldName, value); err != nil {
			errs = append(errs, &ValidationError{Key: fieldName, Value: value, Err: err})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
