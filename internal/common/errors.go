package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes used in AppError.Code
const (
	CodeConfig     = "CONFIG_ERROR"
	CodeNetwork    = "NETWORK_ERROR"
	CodeExtraction = "EXTRACTION_ERROR"
	CodeValidation = "VALIDATION_ERROR"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
	ErrNetwork      = errors.New("network error")
	ErrExtraction   = errors.New("extraction strategy failed")
	ErrConfig       = errors.New("invalid configuration")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError is the only fatal error class; it is raised before any worker pool starts.
func ConfigError(format string, args ...any) *AppError {
	return NewAppError(CodeConfig, fmt.Sprintf(format, args...), ErrConfig)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfig)
}
