package albumcmd

import (
	"errors"

	"github.com/goliatone/go-albums/internal/commands"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/internal/review"
	"github.com/goliatone/go-albums/internal/upload"
)

const (
	TextCodeValidation        = commands.TextCodeValidation
	TextCodeSequenceViolation = "SEQUENCE_VIOLATION"
	TextCodeNoApprovedContent = "NO_APPROVED_CONTENT"
	TextCodeNotPublishable    = "NOT_PUBLISHABLE"
	TextCodeQuotaExceeded     = "QUOTA_EXCEEDED"
)

// classify tags precondition failures so callers can route them, such as
// sending a quota rejection to the upgrade flow. Runtime errors pass through
// and are tagged as command failures by the handler.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, delivery.ErrSequenceViolation):
		return commands.Rejection(err, TextCodeSequenceViolation, "delivery status transition rejected")
	case errors.Is(err, delivery.ErrNoApprovedContent):
		return commands.Rejection(err, TextCodeNoApprovedContent, "publish requires approved images")
	case errors.Is(err, delivery.ErrNotPublishable):
		return commands.Rejection(err, TextCodeNotPublishable, "event cannot be published")
	case errors.Is(err, upload.ErrQuotaExceeded):
		return commands.Rejection(err, TextCodeQuotaExceeded, "storage quota exceeded")
	case errors.Is(err, review.ErrValidation):
		return commands.Rejection(err, TextCodeValidation, "selection rejected")
	default:
		return err
	}
}
