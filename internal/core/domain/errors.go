package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrAccessDenied      = errors.New("access denied")
	ErrRetracted         = errors.New("visit record has been retracted")
	ErrNotArmed          = errors.New("delete has not been requested for this record")
	ErrConflict          = errors.New("unique value already taken")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input is malformed or out of range.
// Nothing is written when it is returned.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// err returns nil when no field was rejected, so callers can return it directly.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-field ValidationError.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsExpected reports whether err is an ordinary outcome of a request rather
// than an infrastructure failure.
func IsExpected(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrRetracted) ||
		errors.Is(err, ErrNotArmed) ||
		errors.Is(err, ErrConflict) ||
		IsValidation(err)
}
