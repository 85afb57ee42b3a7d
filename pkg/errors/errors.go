// Package errors provides structured error types for photobook.
//
// Every error the composition engine returns to a caller carries a
// machine-readable [Code] so the CLI (and any embedding service) can tell a
// bad input file apart from a broken catalog or a solver contract violation.
//
// # Error Codes
//
//   - INVALID_*: malformed photo descriptors, flags or cost matrices
//   - CONFIGURATION: catalog or knob misconfiguration, aborts composition
//   - CATALOG_MISS / TEMPLATE_NOT_FOUND: catalog lookups
//   - DEGENERATE_SOLVE: the assignment solver was called with nothing to solve
//   - FEATURE_STORE: the optional feature backend failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "catalog has no templates")
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // abort
//	}
//
//	err := errors.Wrap(errors.ErrCodeFeatureStore, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeInvalidCost  Code = "INVALID_COST"

	// Configuration errors abort composition.
	ErrCodeConfiguration Code = "CONFIGURATION"

	// Catalog lookups
	ErrCodeCatalogMiss      Code = "CATALOG_MISS"
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"

	// Solver contract violations
	ErrCodeDegenerateSolve Code = "DEGENERATE_SOLVE"

	// External collaborators
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeFeatureStore Code = "FEATURE_STORE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Fatal reports whether err must abort a whole composition run rather than
// degrade a single page. Only configuration problems are fatal.
func Fatal(err error) bool {
	return Is(err, ErrCodeConfiguration)
}

// FieldError describes one invalid configuration field.
type FieldError struct {
	Field  string // dotted path, e.g. "scoring.weights.crop"
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Code returns the error code for this error type.
func (e *FieldError) Code() Code {
	return ErrCodeConfiguration
}

// Invalid returns a configuration error wrapping a FieldError.
func Invalid(field, format string, args ...any) *Error {
	fe := &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
	return Wrap(ErrCodeConfiguration, fe, "invalid configuration")
}
