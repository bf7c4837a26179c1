package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a FolioError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *FolioError {
	if err == nil {
		return nil
	}

	var fe *FolioError
	if errors.As(err, &fe) {
		return &FolioError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       fe,
			Context:     fe.Context,
			Component:   fe.Component,
			Recoverable: fe.Recoverable,
		}
	}

	return &FolioError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeNetwork,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *FolioError {
	fe := Wrap(err, ErrorTypeIO, code, message)
	if fe != nil {
		fe.Recoverable = false
	}
	return fe
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *FolioError {
	fe := Wrap(err, ErrorTypeConfig, code, message)
	if fe != nil {
		fe.Recoverable = false
	}
	return fe
}

// GetErrorContext extracts context information suitable for log fields.
func GetErrorContext(err error) map[string]interface{} {
	var fe *FolioError
	if errors.As(err, &fe) {
		context := make(map[string]interface{})
		for k, v := range fe.Context {
			context[k] = v
		}
		if fe.Component != "" {
			context["component"] = fe.Component
		}
		context["type"] = string(fe.Type)
		context["code"] = fe.Code
		context["recoverable"] = fe.Recoverable
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// CombineErrors combines multiple errors into a single error with context
func CombineErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}

	messages := make([]string, 0, len(nonNil))
	for _, err := range nonNil {
		messages = append(messages, err.Error())
	}

	return &FolioError{
		Type:    ErrorTypeInternal,
		Code:    "ERR_MULTIPLE_ERRORS",
		Message: fmt.Sprintf("multiple errors occurred: %d errors", len(nonNil)),
		Context: map[string]interface{}{
			"error_count": len(nonNil),
			"errors":      messages,
		},
	}
}
