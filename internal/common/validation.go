package common

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// Check records a failure for fieldName when ok is false.
func (v *Validator) Check(ok bool, fieldName string, value interface{}, message string) *Validator {
	if !ok {
		v.errors = append(v.errors, ValidationError{Field: fieldName, Value: value, Message: message})
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Error returns a combined error
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return errors.New(v.ErrorMessage())
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case []string:
		if len(v) == 0 {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	}
	return nil
}

// MinLength returns a rule checking a string has at least min runes.
func MinLength(min int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(str) < min {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be at least %d characters", min),
			}
		}
		return nil
	}
}

// Positive rejects zero and negative integers.
func Positive(fieldName string, value interface{}) *ValidationError {
	switch v := value.(type) {
	case int:
		if v <= 0 {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be positive"}
		}
	case int64:
		if v <= 0 {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be positive"}
		}
	}
	return nil
}

// AboveAtMost returns a rule checking a float lies within (lo, hi].
func AboveAtMost(lo, hi float64) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		f, ok := value.(float64)
		if !ok {
			return nil
		}
		if f <= lo || f > hi {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be greater than %g and at most %g", lo, hi),
			}
		}
		return nil
	}
}

// ValidateAndReturnError wraps validator failures as a configuration error
func ValidateAndReturnError(validator *Validator) error {
	if validator.HasErrors() {
		return NewAppError(CodeConfig, validator.ErrorMessage(), ErrConfig)
	}
	return nil
}
