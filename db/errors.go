// ABOUTME: Error kinds returned by the pipeline and board stores
// ABOUTME: Defines not-found and validation errors with sentinel matching
package db

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// NotFoundError reports an operation addressed to a record that does not
// exist, or that lives in another organization.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

func invalid(field string, value any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown value %q", value)}
}
