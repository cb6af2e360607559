package repositories

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every repository and service. Callers match them
// with errors.Is; the boundary layer translates them into responses.
var (
	// ErrNotFound is returned when a referenced entity or organization is absent.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed input: bad resource IDs,
	// invalid property values, missing required fields.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a create targets an ID that already exists
	// in the tenant.
	ErrConflict = errors.New("already exists")

	// ErrDatabase wraps an underlying storage failure.
	ErrDatabase = errors.New("database error")
)

// Error wraps a sentinel error with context about the entity involved.
type Error struct {
	Err     error  // Underlying sentinel error
	Message string // Additional context
	OrgID   string // Organization involved (if applicable)
	Entity  string // Entity kind involved (if applicable)
	ID      string // Entity ID involved (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying sentinel for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound builds an ErrNotFound carrying the entity reference.
func NotFound(entity, id string) *Error {
	return &Error{Err: ErrNotFound, Message: fmt.Sprintf("%s %q", entity, id), Entity: entity, ID: id}
}

// Conflict builds an ErrConflict carrying the entity reference.
func Conflict(entity, id string) *Error {
	return &Error{Err: ErrConflict, Message: fmt.Sprintf("%s %q", entity, id), Entity: entity, ID: id}
}

// Validation builds an ErrValidation wrapping the cause.
func Validation(cause error) *Error {
	return &Error{Err: ErrValidation, Message: cause.Error()}
}

// Database builds an ErrDatabase wrapping the storage failure.
func Database(op string, cause error) *Error {
	return &Error{Err: ErrDatabase, Message: fmt.Sprintf("%s: %v", op, cause)}
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
