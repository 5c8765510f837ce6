package upload

import (
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-albums/internal/identity"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// File is a local file picked for upload.
type File = interfaces.UploadFile

// ItemStatus tracks one file through the batch.
type ItemStatus string

const (
	ItemQueued   ItemStatus = "queued"
	ItemUploaded ItemStatus = "uploaded"
	ItemFailed   ItemStatus = "failed"
)

// Item is one file in a batch.
type Item struct {
	ID         uuid.UUID
	File       File
	Key        string
	Status     ItemStatus
	Error      string
	PreviewURL string
}

// Failure describes an item that did not upload.
type Failure struct {
	ItemID   uuid.UUID
	FileName string
	Reason   string
}

// Progress is a point-in-time view of a batch.
type Progress struct {
	State         State
	Total         int
	Queued        int
	Uploaded      int
	Failed        int
	Chunks        int
	ChunksDone    int
	BytesTotal    int64
	BytesUploaded int64
}

// Percent is the share of items resolved, 0 to 100.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Uploaded+p.Failed) * 100 / float64(p.Total)
}

// Report is the final account of a run. Counts cover only the items the run
// picked up, not earlier runs of the same session.
type Report struct {
	BatchID  uuid.UUID
	State    State
	Total    int
	Uploaded int
	Failures []Failure
	Notified bool
}

// Aborted reports whether the run was cancelled.
func (r Report) Aborted() bool {
	return r.State == StateAborted
}

// PartiallyFailed reports a completed run with at least one failed item.
func (r Report) PartiallyFailed() bool {
	return r.State == StateCompleted && len(r.Failures) > 0
}

// Untouched counts items neither uploaded nor failed, which only happens when
// the run was aborted.
func (r Report) Untouched() int {
	return r.Total - r.Uploaded - len(r.Failures)
}

// StorageKey builds the object key for an item: the event, the item id and a
// slug of the file name with its lower-cased extension.
func StorageKey(eventID, itemID uuid.UUID, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	stem := strings.TrimSuffix(base, path.Ext(base))
	normalized, err := slug.Normalize(stem)
	if err != nil || normalized == "" {
		normalized = "file"
	}
	return fmt.Sprintf("events/%s/%s-%s%s", eventID, itemID, normalized, ext)
}

func newItem(batchID, eventID uuid.UUID, position int, file File) *Item {
	id := identity.UploadItemUUID(batchID, position, file.Name())
	return &Item{
		ID:     id,
		File:   file,
		Key:    StorageKey(eventID, id, file.Name()),
		Status: ItemQueued,
	}
}

func chunkItems(items []*Item, size int) [][]*Item {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]*Item, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
