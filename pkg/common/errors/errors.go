// Package errors defines the error types shared across the opflow library.
package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the opflow library

var (
	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrShutdown indicates that an operation was submitted to a queue that
	// has been shut down
	ErrShutdown = errors.New("queue is shut down")

	// ErrCycle indicates that a dependency edge would close a cycle
	ErrCycle = errors.New("dependency cycle")

	// ErrAlreadyStarted indicates a graph mutation on an operation that has
	// already begun executing
	ErrAlreadyStarted = errors.New("operation already started")

	// ErrAlreadySubmitted indicates that an operation was submitted to more
	// than one queue, or mutated after submission
	ErrAlreadySubmitted = errors.New("operation already submitted")
)

// ConstructionError describes a rejected construction-time mutation: an
// invalid configuration value or a dependency-graph edge that cannot be
// added. It is always reported synchronously to the caller attempting the
// mutation, before any scheduling is affected.
type ConstructionError struct {
	// Module is the component reporting the error (e.g. "queue", "operation")
	Module string

	// Field is the configuration field or graph operand being rejected
	Field string

	// Value is the rejected value
	Value interface{}

	// Reason describes why the value was rejected
	Reason string

	// Hint optionally suggests a fix
	Hint string

	cause error
}

// NewConstructionError creates a ConstructionError for the given module and
// field. The error wraps ErrInvalidConfiguration unless WithCause overrides it.
func NewConstructionError(module, field string, value interface{}, reason string) *ConstructionError {
	return &ConstructionError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
		cause:  ErrInvalidConfiguration,
	}
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *ConstructionError) WithHint(hint string) *ConstructionError {
	e.Hint = hint
	return e
}

// WithCause sets the sentinel this error wraps (e.g. ErrCycle) and returns
// the same error for chaining.
func (e *ConstructionError) WithCause(cause error) *ConstructionError {
	e.cause = cause
	return e
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns the wrapped sentinel, enabling errors.Is checks against
// ErrInvalidConfiguration, ErrCycle, ErrAlreadyStarted and ErrAlreadySubmitted.
func (e *ConstructionError) Unwrap() error {
	return e.cause
}

// IsConstructionError returns true if the error is (or wraps) a ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}
