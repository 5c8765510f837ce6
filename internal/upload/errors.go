package upload

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-albums/pkg/interfaces"
)

var (
	// ErrQuotaExceeded is the sentinel matched by *QuotaExceededError.
	ErrQuotaExceeded = errors.New("upload: storage quota exceeded")
	// ErrEmptyBatch indicates Start was called with nothing queued.
	ErrEmptyBatch = errors.New("upload: batch has no queued files")
	// ErrBatchRunning indicates the batch cannot be edited while a run is active.
	ErrBatchRunning = errors.New("upload: batch is running")
	// ErrItemNotFound indicates an unknown item id.
	ErrItemNotFound = errors.New("upload: item not found")
	// ErrStorageRequired indicates a controller without a storage collaborator.
	ErrStorageRequired = errors.New("upload: storage api required")
	// ErrClosed indicates the session has ended.
	ErrClosed = errors.New("upload: session closed")
)

// QuotaExceededError is returned when the precheck rejects a batch. Stats is
// nil when plan information could not be fetched.
type QuotaExceededError struct {
	RequestedBytes int64
	Check          interfaces.QuotaCheck
	Stats          *interfaces.StorageStats
}

func (e *QuotaExceededError) Error() string {
	msg := fmt.Sprintf("upload: storage quota exceeded: %d bytes requested", e.RequestedBytes)
	if e.Stats != nil {
		msg += fmt.Sprintf(", %d of %d bytes used on plan %q", e.Stats.UsedBytes, e.Stats.LimitBytes, e.Stats.PlanName)
	} else if e.Check.LimitBytes > 0 {
		msg += fmt.Sprintf(", %d of %d bytes used", e.Check.UsedBytes, e.Check.LimitBytes)
	}
	return msg
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// AvailableBytes is the remaining capacity, or zero when unknown.
func (e *QuotaExceededError) AvailableBytes() int64 {
	used, limit := e.Check.UsedBytes, e.Check.LimitBytes
	if e.Stats != nil {
		used, limit = e.Stats.UsedBytes, e.Stats.LimitBytes
	}
	if limit <= used {
		return 0
	}
	return limit - used
}
