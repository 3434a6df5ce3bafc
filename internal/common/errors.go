// Package common defines sentinel errors shared by the record store layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors; wrapped with the offending field.
	ErrValidation = errors.New("validation failed")
)
