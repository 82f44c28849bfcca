package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeToolNotFound   ErrorType = "tool_not_found"
	ErrorTypeToolFailure    ErrorType = "tool_failure"
	ErrorTypeOutputMissing  ErrorType = "output_missing"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeMethod         ErrorType = "method_not_allowed"
	ErrorTypeInternal       ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"error"`
	Details    string    `json:"details,omitempty"`
	ExitCode   *int      `json:"exit_code,omitempty"`
	Stdout     string    `json:"stdout,omitempty"`
	Stderr     string    `json:"stderr,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new invalid request error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewToolNotFoundError reports an OCR executable that cannot be resolved
func NewToolNotFoundError(tool string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeToolNotFound,
		Message:    "OCR tool not available",
		Details:    fmt.Sprintf("%q could not be resolved on PATH", tool),
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewToolFailureError creates an error for a tool run that exited non-zero or timed out.
// exitCode is omitted from the response body when negative.
func NewToolFailureError(details string, exitCode int, stdout, stderr string, cause error) *AppError {
	appErr := &AppError{
		Type:       ErrorTypeToolFailure,
		Message:    "OCR processing failed",
		Details:    details,
		Stdout:     stdout,
		Stderr:     stderr,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
	if exitCode >= 0 {
		code := exitCode
		appErr.ExitCode = &code
	}
	return appErr
}

// NewOutputMissingError creates an error for a tool that reported success without a usable artifact
func NewOutputMissingError(details string, stdout, stderr string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeOutputMissing,
		Message:    "OCR tool produced no output",
		Details:    details,
		Stdout:     stdout,
		Stderr:     stderr,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewMethodNotAllowedError creates a new method not allowed error
func NewMethodNotAllowedError(method, path string) *AppError {
	return &AppError{
		Type:       ErrorTypeMethod,
		Message:    fmt.Sprintf("Method %s not allowed on %s", method, path),
		StatusCode: http.StatusMethodNotAllowed,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, cause error) *AppError {
	appErr := &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
	if cause != nil {
		appErr.Details = cause.Error()
	}
	return appErr
}

// AsAppError finds an AppError in err's chain, wrapping anything else as internal
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("Unexpected error", err)
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
