// Package errors provides structured error types for the Streamforge pipeline.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by pipeline component.
type ErrorCategory string

const (
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryGenerate ErrorCategory = "GENERATE"
	ErrCategorySink     ErrorCategory = "SINK"
	ErrCategorySpill    ErrorCategory = "SPILL"
	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Config codes
	CodeInvalidConfig   = "INVALID_CONFIG"
	CodeEmptyPopulation = "EMPTY_POPULATION"

	// Generate codes
	CodeEmptyWeightTable = "EMPTY_WEIGHT_TABLE"

	// Sink codes
	CodeTransportFailure  = "TRANSPORT_FAILURE"
	CodeStatementRejected = "STATEMENT_REJECTED"
	CodeMalformedScalar   = "MALFORMED_SCALAR"

	// Spill codes
	CodeArchiveFailed = "ARCHIVE_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// StreamError is the structured error type used throughout the pipeline.
type StreamError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *StreamError) Is(target error) bool {
	var t *StreamError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new StreamError.
func New(category ErrorCategory, code, message string) *StreamError {
	return &StreamError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new StreamError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *StreamError {
	return &StreamError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *StreamError) WithDetails(details map[string]interface{}) *StreamError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
// The pipeline itself never retries a batch; the flag records whether the
// condition is transient, so the next scheduled cycle can be expected to
// succeed without intervention.
func IsRetryable(err error) bool {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a StreamError.
func GetCategory(err error) ErrorCategory {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a StreamError.
func GetCode(err error) string {
	var se *StreamError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// isRetryable determines if an error code describes a transient condition.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategorySink && code == CodeTransportFailure:
		return true
	case category == ErrCategorySink && code == CodeMalformedScalar:
		return true
	case category == ErrCategorySpill && code == CodeArchiveFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewConfigError(code, message string) *StreamError {
	return New(ErrCategoryConfig, code, message)
}

func NewSinkError(code, message string, cause error) *StreamError {
	return Wrap(ErrCategorySink, code, message, cause)
}

func NewSpillError(message string, cause error) *StreamError {
	return Wrap(ErrCategorySpill, CodeArchiveFailed, message, cause)
}

func NewInternalError(message string, cause error) *StreamError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
