package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates that a request named none of the supported
// sources or could not be decoded at all.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError describes which request field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets callers match any ValidationError against ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
