package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// ImagesUploadedNotice is emitted once per upload batch.
type ImagesUploadedNotice struct {
	TenantID string
	EventID  uuid.UUID
	Uploaded int
	Failed   int
	Aborted  bool
}

// ReEditRequestedNotice is emitted after a re-edit request succeeds.
type ReEditRequestedNotice struct {
	EventID  uuid.UUID
	ImageIDs []uuid.UUID
	Comment  string
}

// EventPublishedNotice is emitted after an event is published to the customer.
type EventPublishedNotice struct {
	EventID  uuid.UUID
	StatusID uuid.UUID
}

// Notifier dispatches fire-and-forget notifications. Callers treat every error as
// best-effort and never roll back the state change that triggered the notice.
type Notifier interface {
	NotifyImagesUploaded(ctx context.Context, notice ImagesUploadedNotice) error
	NotifyReEditRequested(ctx context.Context, notice ReEditRequestedNotice) error
	NotifyEventPublished(ctx context.Context, notice EventPublishedNotice) error
}
