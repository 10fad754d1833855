package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing              ErrorType = "PARSING"
	ErrTypeUnknownTechnique     ErrorType = "UNKNOWN_TECHNIQUE"
	ErrTypeUnsupportedTechnique ErrorType = "UNSUPPORTED_TECHNIQUE"
	ErrTypeEmptyScan            ErrorType = "EMPTY_SCAN"
	ErrTypeExtraction           ErrorType = "EXTRACTION"
	ErrTypeExport               ErrorType = "EXPORT"
	ErrTypeValidation           ErrorType = "VALIDATION"
	ErrTypeNotFound             ErrorType = "NOT_FOUND"
	ErrTypeConfig               ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewUnknownTechniqueError reports a file whose headers match no technique
func NewUnknownTechniqueError(file string, cause error) *AppError {
	return NewAppError(ErrTypeUnknownTechnique, "unknown file format", cause).WithContext("file", file)
}

// NewUnsupportedTechniqueError reports an extractor or exporter invoked on the wrong technique
func NewUnsupportedTechniqueError(message string, cause error) *AppError {
	return NewAppError(ErrTypeUnsupportedTechnique, message, cause)
}

// NewExtractionError creates a series extraction error
func NewExtractionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExtraction, message, cause)
}

// NewExportError creates an export error
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
