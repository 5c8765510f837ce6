package review

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel matched by every *ValidationError.
var ErrValidation = errors.New("review: validation failed")

// ValidationError reports an empty or invalid selection or a missing field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("review: %s", e.Message)
	}
	return fmt.Sprintf("review: %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
