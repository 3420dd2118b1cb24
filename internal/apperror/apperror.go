package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel category
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for requests that need an authenticated
// caller and don't have one. HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// ValidationErrors collects every failed field of a single request so a client
// can highlight all invalid fields at once, instead of fixing them one by one.
//
// It satisfies the error interface itself, and errors.Is(err, ErrValidation)
// works on it through Unwrap, the same as a single AppError.
type ValidationErrors struct {
	Fields []*AppError
}

func (v *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Add appends one field failure. Safe to call on every check; use Err() at
// the end to find out whether anything actually failed.
func (v *ValidationErrors) Add(field, message string) {
	v.Fields = append(v.Fields, ValidationFailed(field, message))
}

// Err returns v if any field failed, nil otherwise.
func (v *ValidationErrors) Err() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}
