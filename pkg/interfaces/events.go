package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventRecord describes a client event as returned by the event API.
type EventRecord struct {
	ID               uuid.UUID
	ProjectID        uuid.UUID
	Name             string
	DeliveryStatusID *uuid.UUID
	UpdatedAt        time.Time
}

// EventAPI reads and mutates client events. UpdateEventStatus callers must have
// validated the transition beforehand (or be performing an explicit publish).
type EventAPI interface {
	GetEvent(ctx context.Context, eventID uuid.UUID) (*EventRecord, error)
	UpdateEventStatus(ctx context.Context, eventID, statusID uuid.UUID) (*EventRecord, error)
}
