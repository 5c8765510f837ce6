package notifications

import (
	"context"

	"github.com/goliatone/go-albums/internal/logging"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

// BestEffort forwards notices to a Notifier, logging and swallowing failures.
// It never reports an error to the caller, so the triggering state change is
// never rolled back or reported as failed because of a notification.
type BestEffort struct {
	notifier interfaces.Notifier
	logger   interfaces.Logger
}

// NewBestEffort wraps notifier. A nil notifier drops every notice.
func NewBestEffort(notifier interfaces.Notifier, logger interfaces.Logger) *BestEffort {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &BestEffort{notifier: notifier, logger: logger}
}

// ImagesUploaded reports whether the notice was delivered.
func (b *BestEffort) ImagesUploaded(ctx context.Context, notice interfaces.ImagesUploadedNotice) bool {
	if b == nil || b.notifier == nil {
		return false
	}
	if err := b.notifier.NotifyImagesUploaded(ctx, notice); err != nil {
		b.logger.Warn("notifications.images_uploaded.failed",
			"event_id", notice.EventID,
			"tenant_id", notice.TenantID,
			"uploaded", notice.Uploaded,
			"error", err,
		)
		return false
	}
	b.logger.Debug("notifications.images_uploaded.sent", "event_id", notice.EventID, "uploaded", notice.Uploaded)
	return true
}

// ReEditRequested reports whether the notice was delivered.
func (b *BestEffort) ReEditRequested(ctx context.Context, notice interfaces.ReEditRequestedNotice) bool {
	if b == nil || b.notifier == nil {
		return false
	}
	if err := b.notifier.NotifyReEditRequested(ctx, notice); err != nil {
		b.logger.Warn("notifications.re_edit_requested.failed",
			"event_id", notice.EventID,
			"images", len(notice.ImageIDs),
			"error", err,
		)
		return false
	}
	b.logger.Debug("notifications.re_edit_requested.sent", "event_id", notice.EventID, "images", len(notice.ImageIDs))
	return true
}

// EventPublished reports whether the notice was delivered.
func (b *BestEffort) EventPublished(ctx context.Context, notice interfaces.EventPublishedNotice) bool {
	if b == nil || b.notifier == nil {
		return false
	}
	if err := b.notifier.NotifyEventPublished(ctx, notice); err != nil {
		b.logger.Warn("notifications.event_published.failed", "event_id", notice.EventID, "error", err)
		return false
	}
	b.logger.Debug("notifications.event_published.sent", "event_id", notice.EventID)
	return true
}

// Recorder is an in-memory Notifier that keeps every notice it receives.
type Recorder struct {
	Uploaded  []interfaces.ImagesUploadedNotice
	ReEdits   []interfaces.ReEditRequestedNotice
	Published []interfaces.EventPublishedNotice
	Err       error
}

var _ interfaces.Notifier = (*Recorder)(nil)

func (r *Recorder) NotifyImagesUploaded(_ context.Context, notice interfaces.ImagesUploadedNotice) error {
	r.Uploaded = append(r.Uploaded, notice)
	return r.Err
}

func (r *Recorder) NotifyReEditRequested(_ context.Context, notice interfaces.ReEditRequestedNotice) error {
	r.ReEdits = append(r.ReEdits, notice)
	return r.Err
}

func (r *Recorder) NotifyEventPublished(_ context.Context, notice interfaces.EventPublishedNotice) error {
	r.Published = append(r.Published, notice)
	return r.Err
}
