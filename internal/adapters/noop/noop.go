package noop

import (
	"context"
	"time"

	"github.com/goliatone/go-albums/pkg/interfaces"
)

// Cache returns an interfaces.CacheProvider that does nothing.
func Cache() interfaces.CacheProvider {
	return cacheAdapter{}
}

type cacheAdapter struct{}

func (cacheAdapter) Get(context.Context, string) (any, error) {
	return nil, nil
}

func (cacheAdapter) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (cacheAdapter) Delete(context.Context, string) error {
	return nil
}

func (cacheAdapter) Clear(context.Context) error {
	return nil
}

// Notifier returns a notifier that drops every notice.
func Notifier() interfaces.Notifier {
	return notifierAdapter{}
}

type notifierAdapter struct{}

func (notifierAdapter) NotifyImagesUploaded(context.Context, interfaces.ImagesUploadedNotice) error {
	return nil
}

func (notifierAdapter) NotifyReEditRequested(context.Context, interfaces.ReEditRequestedNotice) error {
	return nil
}

func (notifierAdapter) NotifyEventPublished(context.Context, interfaces.EventPublishedNotice) error {
	return nil
}

// Storage returns a storage collaborator with no quota that accepts and discards
// every chunk.
func Storage() interfaces.StorageAPI {
	return storageAdapter{}
}

type storageAdapter struct{}

func (storageAdapter) CheckUploadQuota(_ context.Context, _ string, totalBytes int64) (*interfaces.QuotaCheck, error) {
	return &interfaces.QuotaCheck{CanUpload: true, RequestedBytes: totalBytes}, nil
}

func (storageAdapter) GetStorageStats(context.Context, string) (*interfaces.StorageStats, error) {
	return &interfaces.StorageStats{PlanName: "unlimited"}, nil
}

func (storageAdapter) UploadImageBatch(ctx context.Context, req interfaces.UploadBatchRequest) (*interfaces.UploadBatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &interfaces.UploadBatchResult{Successful: len(req.Parts)}, nil
}
