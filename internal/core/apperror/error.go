// Package apperror provides structured error handling for model validation,
// query construction and store access.
// Validation failures never travel as plain strings: they carry a FieldErrors
// map so callers can highlight every invalid field from one attempt.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes
const (
	// Infrastructure errors
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Caller errors
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidQuery = "INVALID_QUERY"

	// Registry and calling code out of sync
	CodeIntegration = "INTEGRATION_ERROR"

	CodeNotFound  = "NOT_FOUND"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// FieldErrors maps a field name to a stable, localizable error key
// such as "model.location_gcs.schema.lat.max".
type FieldErrors map[string]string

// Keys returns the failing field names in sorted order.
func (f FieldErrors) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the map deterministically, for logs.
func (f FieldErrors) String() string {
	parts := make([]string, 0, len(f))
	for _, k := range f.Keys() {
		parts = append(parts, k+"="+f[k])
	}
	return strings.Join(parts, ", ")
}

// AppError is the standard error type of the module.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Fields holds per-field error keys for validation failures
	Fields FieldErrors `json:"fields,omitempty"`

	// Details contains additional context (entity, column, value)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(e.Fields) > 0 {
		msg += " [" + e.Fields.String() + "]"
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error without field detail.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldErrors creates a validation error for one entity carrying
// the per-field error keys.
func NewFieldErrors(entity string, fields FieldErrors) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("%s failed validation", entity),
		Fields:  fields,
		Details: map[string]any{"entity": entity},
	}
}

// NewInvalidQuery is returned when a query descriptor cannot be built
// from the caller's selection.
func NewInvalidQuery(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidQuery,
		Message: message,
	}
}

// NewIntegration reports a field name or enum value the registry does not
// know. It is raised with panic, never returned.
func NewIntegration(entity, field string) *AppError {
	return &AppError{
		Code:    CodeIntegration,
		Message: fmt.Sprintf("%s has no field %q", entity, field),
		Details: map[string]any{"entity": entity, "field": field},
	}
}

// NewNotFound creates a not found error
func NewNotFound(entity string, key any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Details: map[string]any{"entity": entity, "key": key},
	}
}

// NewDuplicate creates a duplicate entry error
func NewDuplicate(entity string) *AppError {
	return &AppError{
		Code:    CodeDuplicate,
		Message: fmt.Sprintf("%s with these unique values already exists", entity),
		Details: map[string]any{"entity": entity},
	}
}

// NewDatabase wraps a store failure.
func NewDatabase(op string, err error) *AppError {
	return &AppError{
		Code:    CodeDatabase,
		Message: op,
		Err:     err,
	}
}

// NewInternal creates an internal error
func NewInternal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsValidation checks if error is CodeValidation
func IsValidation(err error) bool {
	return Is(err, CodeValidation)
}

// FieldsOf returns the per-field error keys carried by err, or nil.
func FieldsOf(err error) FieldErrors {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Fields
	}
	return nil
}
