package delivery

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/google/uuid"
)

var (
	// ErrSequenceViolation is the sentinel matched by every *SequenceViolation.
	ErrSequenceViolation = errors.New("delivery: status transition out of sequence")
	// ErrUnknownStatus indicates a status id missing from the catalog.
	ErrUnknownStatus = errors.New("delivery: unknown delivery status")
	// ErrCatalogRequired indicates a nil catalog.
	ErrCatalogRequired = errors.New("delivery: status catalog required")
)

// SequenceViolation reports an attempted non-adjacent status change together with
// the only status that could have been chosen instead.
type SequenceViolation struct {
	Current *catalog.EventDeliveryStatus
	Target  catalog.EventDeliveryStatus
	Next    *catalog.EventDeliveryStatus
}

func (e *SequenceViolation) Error() string {
	next := "none"
	if e.Next != nil {
		next = fmt.Sprintf("%s (step %d)", e.Next.Label(), e.Next.Step)
	}
	return fmt.Sprintf("delivery: cannot move to %s (step %d); the only valid next status is %s",
		e.Target.Label(), e.Target.Step, next)
}

// Is lets errors.Is(err, ErrSequenceViolation) match.
func (e *SequenceViolation) Is(target error) bool {
	return target == ErrSequenceViolation
}

// currentStep resolves the step of the current status, zero when unset.
func currentStep(cat *catalog.Catalog, current *uuid.UUID) (int, *catalog.EventDeliveryStatus, error) {
	if cat == nil {
		return 0, nil, ErrCatalogRequired
	}
	if current == nil || *current == uuid.Nil {
		return 0, nil, nil
	}
	status, ok := cat.DeliveryByID(*current)
	if !ok {
		return 0, nil, fmt.Errorf("%w: current %s", ErrUnknownStatus, *current)
	}
	return status.Step, &status, nil
}

// NextAvailableStatus returns the status one step after current. With no current
// status the first step is returned; at the last step there is none.
func NextAvailableStatus(cat *catalog.Catalog, current *uuid.UUID) (catalog.EventDeliveryStatus, bool) {
	step, _, err := currentStep(cat, current)
	if err != nil {
		return catalog.EventDeliveryStatus{}, false
	}
	return cat.DeliveryByStep(step + 1)
}

// ValidateTransition accepts target only when its step is exactly one past the
// current step (zero when no status is set). There are no backward transitions.
func ValidateTransition(cat *catalog.Catalog, current *uuid.UUID, target uuid.UUID) error {
	step, currentStatus, err := currentStep(cat, current)
	if err != nil {
		return err
	}
	targetStatus, ok := cat.DeliveryByID(target)
	if !ok {
		return fmt.Errorf("%w: target %s", ErrUnknownStatus, target)
	}
	if targetStatus.Step == step+1 {
		return nil
	}
	violation := &SequenceViolation{Current: currentStatus, Target: targetStatus}
	if next, ok := cat.DeliveryByStep(step + 1); ok {
		violation.Next = &next
	}
	return violation
}

// IsPublishable reports whether the event sits before the PUBLISHED step.
func IsPublishable(cat *catalog.Catalog, current *uuid.UUID) bool {
	step, _, err := currentStep(cat, current)
	if err != nil {
		return false
	}
	return step < cat.Published().Step
}
