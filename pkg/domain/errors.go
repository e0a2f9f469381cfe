package domain

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is against these to classify any Arbor error.
var (
	// ErrConfiguration is the single checked failure of the build phase.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrEvaluation groups MissingFact, TypeMismatch and NoMappingDeclared.
	ErrEvaluation = errors.New("evaluation failed")
	// ErrResultConstruction marks a fatal schema/result-type mismatch.
	ErrResultConstruction = errors.New("result construction failed")
)

// ErrTreeNotFound is returned when a tree ID is not loaded.
var ErrTreeNotFound = errors.New("tree not found")

// ErrDocumentNotFound is returned by loaders when a document ID does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// ConfigurationError reports an invalid tree document or builder call.
type ConfigurationError struct {
	Path  string // Node path, e.g. "/range=0/flag"
	Input string // Input-type name involved, if any
	Msg   string
	Err   error
}

func (e *ConfigurationError) Error() string {
	msg := "Invalid configuration: " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Configf builds a ConfigurationError for the given input type.
func Configf(input, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Input: input, Msg: fmt.Sprintf(format, args...)}
}

// MissingFactError means a declared input was absent from the facts.
type MissingFactError struct {
	Fact string
}

func (e *MissingFactError) Error() string {
	return fmt.Sprintf("no fact provided for %q", e.Fact)
}

func (e *MissingFactError) Is(target error) bool { return target == ErrEvaluation }

// TypeMismatchError means a fact was present but of the wrong kind.
type TypeMismatchError struct {
	Field    string
	Value    any
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("fact %q has value %v of type %s, expected %s", e.Field, e.Value, e.Actual, e.Expected)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrEvaluation }

// NoMappingError means a fact had the right kind but no branch (and no usable default) matched it.
type NoMappingError struct {
	Input string
	Value any
}

func (e *NoMappingError) Error() string {
	return fmt.Sprintf("no mapping declared for %s=%v", e.Input, e.Value)
}

func (e *NoMappingError) Is(target error) bool { return target == ErrEvaluation }

// ResultConstructionError wraps a failure to instantiate a result or invoke one of its setters.
type ResultConstructionError struct {
	Type      string
	Attribute string
	Err       error
}

func (e *ResultConstructionError) Error() string {
	if e.Attribute == "" {
		return fmt.Sprintf("cannot construct result %q: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("cannot set attribute %q on result %q: %v", e.Attribute, e.Type, e.Err)
}

func (e *ResultConstructionError) Is(target error) bool { return target == ErrResultConstruction }

func (e *ResultConstructionError) Unwrap() error { return e.Err }
