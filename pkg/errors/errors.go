package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these map to specific HTTP responses and UI outcomes.
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAccountSuspended   = errors.New("account suspended")

	// Transport errors
	ErrNetwork = errors.New("network error")

	// Lifecycle errors
	ErrOperationInProgress = errors.New("authentication in progress")
	ErrNotAuthenticated    = errors.New("not authenticated")

	// General errors
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
	ErrValidation = errors.New("validation error")
)

// BackendError carries the message the backend attached to a failed call,
// wrapped around one of the sentinel errors above so callers can still
// branch with Is.
type BackendError struct {
	Kind    error
	Message string
	Status  int
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
	}
	return e.Kind.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Kind
}

// NewBackendError creates a BackendError for the given sentinel kind.
func NewBackendError(kind error, status int, message string) *BackendError {
	return &BackendError{Kind: kind, Status: status, Message: message}
}

// UserMessage returns the backend-supplied message from err if there is one,
// else the given fallback.
func UserMessage(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors. It unwraps to
// ErrValidation so errors.Is(err, ErrValidation) matches the collection.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d errors", len(e.Errors))
}

func (e *ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, ValidationError{Field: field, Message: message})
}

// Field returns the message recorded for the given field, or "".
func (e *ValidationErrors) Field(field string) string {
	for _, ve := range e.Errors {
		if ve.Field == field {
			return ve.Message
		}
	}
	return ""
}

// HasErrors returns true if there are validation errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
