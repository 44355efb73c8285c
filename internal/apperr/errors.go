package apperr

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// ConfigurationError reports an unknown strategy, method or measure name.
type ConfigurationError struct {
	Kind    string
	Name    string
	Allowed []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid %s %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("unknown %s %q, expected one of [%s]", e.Kind, e.Name, strings.Join(e.Allowed, ", "))
}

func NewConfiguration(kind, name string, allowed ...string) *ConfigurationError {
	return &ConfigurationError{Kind: kind, Name: name, Allowed: allowed}
}

// ShapeMismatchError reports two collections that cannot be compared
// element-wise. Callers return it next to an undefined (NaN) value.
type ShapeMismatchError struct {
	Left   int
	Right  int
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch (%d vs %d): %s", e.Left, e.Right, e.Reason)
}

func NewShapeMismatch(left, right int, reason string) *ShapeMismatchError {
	return &ShapeMismatchError{Left: left, Right: right, Reason: reason}
}

// EmptyInputError marks a query or a call that had nothing to compute on.
// Query is empty when the whole call is affected.
type EmptyInputError struct {
	Query  string
	Reason string
}

func (e *EmptyInputError) Error() string {
	if e.Query == "" {
		return "empty input: " + e.Reason
	}
	return fmt.Sprintf("empty input for query %q: %s", e.Query, e.Reason)
}

func NewEmptyInput(query, reason string) *EmptyInputError {
	return &EmptyInputError{Query: query, Reason: reason}
}
