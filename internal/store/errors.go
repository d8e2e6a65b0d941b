package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every lookup that finds no row for the scoped user.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err (or any error in its chain) is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s %w", kind, id, ErrNotFound)
}

func required(field string) error {
	return &ValidationError{Field: field, Message: field + " is required"}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
