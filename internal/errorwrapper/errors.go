package errorwrapper

import (
	"errors"
	"fmt"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
	// ErrNetworkFailure indicates network connectivity issues
	ErrNetworkFailure = errors.New("network failure")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrAuthenticationFailed indicates the remote rejected our credentials
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrIntegrityMismatch indicates a transferred file's size does not match the source
	ErrIntegrityMismatch = errors.New("integrity mismatch")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NetworkError represents network-related errors against the remote storage API
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for URL '%s': %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// NewNetworkError creates a new network error
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// RemoteAPIError represents an error response from the alist API. The API
// reports failures both via HTTP status and via a non-200 `code` in the
// response envelope, so both are kept.
type RemoteAPIError struct {
	Endpoint   string
	StatusCode int
	Code       int
	Message    string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("alist API error from '%s': http %d, code %d: %s", e.Endpoint, e.StatusCode, e.Code, e.Message)
}

// NewRemoteAPIError creates a new remote API error
func NewRemoteAPIError(endpoint string, statusCode, code int, message string) *RemoteAPIError {
	return &RemoteAPIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// IsAuthError reports whether err indicates an authentication failure,
// either our sentinel or an HTTP 401 from the remote API.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthenticationFailed) {
		return true
	}
	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.Code == 401
	}
	return false
}
