package schema

import "fmt"

// ValidationError represents a single fact validation failure.
// Err carries the underlying domain error, when there is one.
type ValidationError struct {
	Key    string // Fact name
	Reason string // Human-readable reason, used when Err is nil
	Value  any    // The value that failed validation
	Err    error
}

func (e *ValidationError) Error() string {
	reason := e.Reason
	if e.Err != nil {
		reason = e.Err.Error()
	}
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, reason, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
