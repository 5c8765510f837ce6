package bulk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-albums/internal/review"
)

var (
	// ErrEventIDRequired indicates a nil event id.
	ErrEventIDRequired = errors.New("bulk: event id required")
	// ErrImageNotInEvent indicates a selected id that the event does not hold.
	ErrImageNotInEvent = errors.New("bulk: image not found in event")
)

// IneligibleError rejects a selection before any mutation. It matches
// review.ErrValidation so callers treat it like any other validation failure.
type IneligibleError struct {
	Action Action
	Items  []review.Ineligibility
}

func (e *IneligibleError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		parts = append(parts, fmt.Sprintf("%s (%s)", item.ImageID, item.Reason))
	}
	return fmt.Sprintf("bulk: %s not allowed for %d image(s): %s", e.Action, len(e.Items), strings.Join(parts, ", "))
}

func (e *IneligibleError) Is(target error) bool {
	return target == review.ErrValidation
}
