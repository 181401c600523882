// Package validation provides common validation utilities for the opflow library.
package validation

import (
	oferrors "github.com/vnykmshr/opflow/pkg/common/errors"
)

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ConstructionError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return oferrors.NewConstructionError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNonNegative validates that an integer value is non-negative (>= 0).
// Returns a ConstructionError if the value is negative.
func ValidateNonNegative(module, field string, value int) error {
	if value < 0 {
		return oferrors.NewConstructionError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive value")
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// Returns a ConstructionError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return oferrors.NewConstructionError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ConstructionError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return oferrors.NewConstructionError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}
