// Package errors provides a lightweight structured error type for
// category-based classification across the pipeline, HTTP layer, and CLI.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies an error for propagation and presentation.
type Category string

const (
	// User-facing configuration and input errors.
	CategoryConfig     Category = "config"
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"

	// Per-stage generation failures.
	CategoryUpstream Category = "upstream_data_invalid"
	CategoryExternal Category = "external_call_failed"
	CategoryTimeout  Category = "timeout"

	// Channel-level failures detected on the consuming side.
	CategoryTransport Category = "transport"

	// Everything else.
	CategoryInternal Category = "internal"
)

// Severity indicates how critical an error is.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ContextFields carries structured context for an Error.
type ContextFields map[string]any

// Error is a structured error with category, severity, and context.
type Error struct {
	Category  Category      `json:"category"`
	Severity  Severity      `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"-"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap supports errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Cause }

// WithContext adds a structured context field to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new Error.
func New(category Category, severity Severity, message string) *Error {
	return &Error{Category: category, Severity: severity, Message: message}
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(err error, category Category, severity Severity, message string) *Error {
	return &Error{Category: category, Severity: severity, Message: message, Cause: err}
}

// ValidationError creates a request validation error (400 Bad Request).
func ValidationError(message string) *Error {
	return New(CategoryValidation, SeverityWarning, message)
}

// NotFoundError creates a missing-resource error (404 Not Found).
func NotFoundError(message string) *Error {
	return New(CategoryNotFound, SeverityWarning, message)
}

// GetCategory extracts the category from an error chain, or returns
// CategoryInternal for unclassified errors.
func GetCategory(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryInternal
}

// IsCategory reports whether err carries the given category.
func IsCategory(err error, category Category) bool {
	return GetCategory(err) == category
}

func asErr(err error, target **Error) bool {
	return errors.As(err, target)
}

// IsRetryable reports whether err is marked retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
