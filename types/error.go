package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across headerflow.
type ErrorCode string

// Dimension / preset error codes
const (
	ErrUnknownPreset    ErrorCode = "UNKNOWN_PRESET"
	ErrInvalidDimension ErrorCode = "INVALID_DIMENSION"
)

// Vendor (Jimeng) error codes
const (
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrAuthentication  ErrorCode = "AUTHENTICATION"
	ErrRateLimited     ErrorCode = "RATE_LIMITED"
	ErrUpstreamError   ErrorCode = "UPSTREAM_ERROR"
	ErrUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	ErrTaskNotFound    ErrorCode = "TASK_NOT_FOUND"
	ErrTimeout         ErrorCode = "TIMEOUT"
	ErrInternalError   ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether err carries the given code anywhere in its chain.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
