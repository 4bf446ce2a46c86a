// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/gRPC/etc by adapters.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a state conflict such as a concurrent write that lost a race.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrEmptyCorpus indicates there are no quotes to choose from.
	// Adapters render it as an empty state, never as a failure.
	ErrEmptyCorpus = errors.New("no quotes yet")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError provides context for conflict errors.
type ConflictError struct {
	Entity  string
	Reason  string
	Details string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s conflict: %s (%s)", e.Entity, e.Reason, e.Details)
	}

	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error with context.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError provides context for validation errors.
// An empty Field marks an error that belongs to the submission as a whole.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ValidationErrors collects every validation failure of a single submission
// so they can be reported together.
type ValidationErrors struct {
	Errors []*ValidationError
}

// Add records a failure. Use an empty field for form-level errors.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// Merge appends err to the collection. Validation errors keep their field,
// any other error is ignored and reported by the caller.
func (e *ValidationErrors) Merge(err error) bool {
	var many *ValidationErrors
	if errors.As(err, &many) {
		e.Errors = append(e.Errors, many.Errors...)
		return true
	}

	var one *ValidationError
	if errors.As(err, &one) {
		e.Errors = append(e.Errors, one)
		return true
	}

	return false
}

// Len returns the number of collected failures.
func (e *ValidationErrors) Len() int {
	if e == nil {
		return 0
	}

	return len(e.Errors)
}

// OrNil returns nil when nothing was collected.
func (e *ValidationErrors) OrNil() error {
	if e.Len() == 0 {
		return nil
	}

	return e
}

// FieldErrors groups messages by field, skipping form-level errors.
func (e *ValidationErrors) FieldErrors() map[string][]string {
	fields := make(map[string][]string)

	for _, ve := range e.Errors {
		if ve.Field != "" {
			fields[ve.Field] = append(fields[ve.Field], ve.Message)
		}
	}

	return fields
}

// NonFieldErrors returns messages that are not tied to a field.
func (e *ValidationErrors) NonFieldErrors() []string {
	var msgs []string

	for _, ve := range e.Errors {
		if ve.Field == "" {
			msgs = append(msgs, ve.Message)
		}
	}

	return msgs
}

// Has reports whether a failure with the given message was collected.
func (e *ValidationErrors) Has(message string) bool {
	for _, ve := range e.Errors {
		if ve.Message == message {
			return true
		}
	}

	return false
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		if ve.Field != "" {
			parts = append(parts, ve.Field+": "+ve.Message)
		} else {
			parts = append(parts, ve.Message)
		}
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationErrors) Unwrap() error {
	return ErrValidation
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsEmptyCorpus checks if an error reports an empty quote corpus.
func IsEmptyCorpus(err error) bool {
	return errors.Is(err, ErrEmptyCorpus)
}
