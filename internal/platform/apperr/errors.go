// Package apperr defines the error taxonomy shared by the core services and the
// transport layer. Callers match sentinels with errors.Is and validation failures
// with errors.As(*ValidationError).
package apperr

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicateEmail is returned when an account with the same normalized email exists.
	ErrDuplicateEmail = errors.New("email address is already in use")
	// ErrInvalidCredentials is returned for unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("authentication failed")
	// ErrInvalidToken is returned when a token fails signature, claim, or subject checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a well-formed token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrNotFound is the parent of all entity lookup failures.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyMember is returned when adding a user that is already in the member set.
	ErrAlreadyMember = errors.New("user is already a member of this organization")
	// ErrPermissionDenied is returned when a membership policy predicate is false.
	ErrPermissionDenied = errors.New("permission denied")
)

var (
	// ErrUserNotFound wraps ErrNotFound for user lookups.
	ErrUserNotFound = &notFoundError{entity: "user"}
	// ErrOrgNotFound wraps ErrNotFound for organization lookups.
	ErrOrgNotFound = &notFoundError{entity: "organization"}
)

type notFoundError struct {
	entity string
}

func (e *notFoundError) Error() string { return e.entity + " not found" }

func (e *notFoundError) Unwrap() error { return ErrNotFound }

// FieldError describes one invalid or missing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field error found in a single request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field has at least one error.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// ErrOrNil returns e as an error when it holds at least one field error, otherwise nil.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError returns a ValidationError with a single field error.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}
