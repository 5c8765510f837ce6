package interfaces

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// CoverSlot identifies one of the device scoped cover images held by a project.
type CoverSlot string

const (
	CoverSlotDesktop CoverSlot = "desktop"
	CoverSlotTablet  CoverSlot = "tablet"
	CoverSlotMobile  CoverSlot = "mobile"
)

// CoverSlots lists the supported cover slots in display order.
func CoverSlots() []CoverSlot {
	return []CoverSlot{CoverSlotDesktop, CoverSlotTablet, CoverSlotMobile}
}

// ImageRecord describes an image inside an event gallery.
type ImageRecord struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	StatusID  uuid.UUID
	Comment   *string
	SortOrder int
	FileName  string
	URL       string
	Size      int64
}

// ImageUpdate carries the fields a bulk update may change.
type ImageUpdate struct {
	StatusID uuid.UUID
	Comment  *string
}

// ItemResult reports the outcome of a mutation for a single image.
type ItemResult struct {
	ID      uuid.UUID
	Success bool
	Message string
}

// UploadFile is a local file selected for upload or re-upload.
type UploadFile interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// FileResult reports the outcome of a single file transfer.
type FileResult struct {
	FileName string
	Success  bool
	Message  string
}

// ReuploadResult summarises a re-upload request.
type ReuploadResult struct {
	Successful int
	Failed     int
	Results    []FileResult
}

// ApproveResult summarises an approval request.
type ApproveResult struct {
	ApprovedCount int
}

// ImageAPI reads and mutates event images.
type ImageAPI interface {
	ListImages(ctx context.Context, eventID uuid.UUID) ([]ImageRecord, error)
	BulkUpdateImages(ctx context.Context, imageIDs []uuid.UUID, update ImageUpdate) ([]ItemResult, error)
	ReuploadImages(ctx context.Context, imageIDs []uuid.UUID, files []UploadFile) (*ReuploadResult, error)
	ApproveImages(ctx context.Context, imageIDs []uuid.UUID) (*ApproveResult, error)
	UpdateSortOrder(ctx context.Context, eventID uuid.UUID, ordered []uuid.UUID) error
	SetProjectCover(ctx context.Context, projectID uuid.UUID, slot CoverSlot, imageURL string) error
}
