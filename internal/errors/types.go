// Package errors provides the structured error taxonomy shared by folio
// packages. Every error that crosses a package boundary is a *FolioError
// carrying a type, a stable code, and optional context.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
	ErrCodeServerRejected   = "ERR_SERVER_REJECTED"
	ErrCodeTransportFailure = "ERR_TRANSPORT_FAILURE"
	ErrCodeSubmitInFlight   = "ERR_SUBMIT_IN_FLIGHT"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeInternalError    = "ERR_INTERNAL"
)

// FolioError is a structured error type with context.
type FolioError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	Recoverable bool
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FolioError) Unwrap() error {
	return e.Cause
}

// Is reports a match when type and code are equal.
func (e *FolioError) Is(target error) bool {
	var t *FolioError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FolioError) WithContext(key string, value interface{}) *FolioError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *FolioError) WithComponent(component string) *FolioError {
	e.Component = component

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *FolioError {
	return &FolioError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewServerRejectedError reports a completed exchange whose status was not 2xx.
func NewServerRejectedError(status int) *FolioError {
	return (&FolioError{
		Type:        ErrorTypeNetwork,
		Code:        ErrCodeServerRejected,
		Message:     fmt.Sprintf("endpoint rejected submission with status %d", status),
		Recoverable: true,
	}).WithContext("status", status)
}

// NewTransportFailureError reports an exchange that could not complete.
func NewTransportFailureError(cause error) *FolioError {
	return &FolioError{
		Type:        ErrorTypeNetwork,
		Code:        ErrCodeTransportFailure,
		Message:     "request could not complete",
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *FolioError {
	return &FolioError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsServerRejected checks for a non-success response.
func IsServerRejected(err error) bool {
	return hasCode(err, ErrCodeServerRejected)
}

// IsTransportFailure checks for an exchange that never completed.
func IsTransportFailure(err error) bool {
	return hasCode(err, ErrCodeTransportFailure)
}

func hasType(err error, t ErrorType) bool {
	var fe *FolioError
	if errors.As(err, &fe) {
		return fe.Type == t
	}

	return false
}

func hasCode(err error, code string) bool {
	var fe *FolioError
	if errors.As(err, &fe) {
		return fe.Code == code
	}

	return false
}
