package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// QuotaCheck is the answer of the storage quota collaborator.
type QuotaCheck struct {
	CanUpload      bool
	RequestedBytes int64
	UsedBytes      int64
	LimitBytes     int64
}

// StorageStats reports plan and usage information for a tenant.
type StorageStats struct {
	PlanName   string
	UsedBytes  int64
	LimitBytes int64
	ImageCount int
}

// UploadPart is one file inside an upload chunk.
type UploadPart struct {
	ItemID uuid.UUID
	Key    string
	File   UploadFile
}

// UploadBatchRequest is a single chunk sent to remote storage.
type UploadBatchRequest struct {
	TenantID string
	EventID  uuid.UUID
	Parts    []UploadPart
}

// UploadBatchResult reports how a chunk was received. Files listed in Failed were
// rejected individually; everything else in the chunk was stored.
type UploadBatchResult struct {
	Successful int
	Failed     []FileResult
}

// StorageAPI gates and performs image transfers. UploadImageBatch must honour ctx
// cancellation for the in-flight request.
type StorageAPI interface {
	CheckUploadQuota(ctx context.Context, tenantID string, totalBytes int64) (*QuotaCheck, error)
	GetStorageStats(ctx context.Context, tenantID string) (*StorageStats, error)
	UploadImageBatch(ctx context.Context, req UploadBatchRequest) (*UploadBatchResult, error)
}
