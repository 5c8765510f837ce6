package images

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-albums/internal/catalog"
	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/identity"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrImageNotInEvent indicates a reorder referencing an image of another event.
	ErrImageNotInEvent = errors.New("images: image does not belong to event")
	// ErrSortOrderIncomplete indicates a reorder that does not list every image once.
	ErrSortOrderIncomplete = errors.New("images: sort order must list every event image exactly once")
	// ErrFilesMismatch indicates a re-upload where ids and files do not pair up.
	ErrFilesMismatch = errors.New("images: re-upload requires one file per image")
	// ErrStatusUnknown indicates a status id missing from the image catalog.
	ErrStatusUnknown = errors.New("images: unknown image status")
)

// Store serves the event and image collaborator contracts from repositories.
type Store struct {
	events   EventRepository
	images   ImageRepository
	covers   CoverRepository
	catalogs catalog.Provider
	now      func() time.Time
}

var (
	_ interfaces.EventAPI = (*Store)(nil)
	_ interfaces.ImageAPI = (*Store)(nil)
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore wires repositories into the collaborator contracts.
func NewStore(events EventRepository, images ImageRepository, covers CoverRepository, catalogs catalog.Provider, opts ...StoreOption) *Store {
	s := &Store{
		events:   events,
		images:   images,
		covers:   covers,
		catalogs: catalogs,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewMemoryStore wires in-memory repositories.
func NewMemoryStore(catalogs catalog.Provider, opts ...StoreOption) *Store {
	return NewStore(NewMemoryEventRepository(), NewMemoryImageRepository(), NewMemoryCoverRepository(), catalogs, opts...)
}

// CreateEvent registers a client event.
func (s *Store) CreateEvent(ctx context.Context, projectID uuid.UUID, name string) (*interfaces.EventRecord, error) {
	now := s.now()
	created, err := s.events.Create(ctx, &Event{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return created.record(), nil
}

// NewImage describes an image created by an upload.
type NewImage struct {
	ID         uuid.UUID
	EventID    uuid.UUID
	FileName   string
	StorageKey string
	URL        string
	Size       int64
}

// AddImage appends an uploaded image to the end of its event gallery with the
// REVIEW_PENDING status.
func (s *Store) AddImage(ctx context.Context, input NewImage) (interfaces.ImageRecord, error) {
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return interfaces.ImageRecord{}, err
	}
	pending, ok := cat.ImageStatusByCode(domain.ImageStatusReviewPending)
	if !ok {
		return interfaces.ImageRecord{}, fmt.Errorf("%w: %s", ErrStatusUnknown, domain.ImageStatusReviewPending)
	}
	existing, err := s.images.ListByEvent(ctx, input.EventID)
	if err != nil {
		return interfaces.ImageRecord{}, err
	}
	id := input.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := s.now()
	created, err := s.images.Create(ctx, &Image{
		ID:         id,
		EventID:    input.EventID,
		StatusID:   pending.ID,
		SortOrder:  len(existing) + 1,
		FileName:   input.FileName,
		StorageKey: input.StorageKey,
		URL:        input.URL,
		Size:       input.Size,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return interfaces.ImageRecord{}, err
	}
	return created.record(), nil
}

func (s *Store) GetEvent(ctx context.Context, eventID uuid.UUID) (*interfaces.EventRecord, error) {
	record, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return record.record(), nil
}

func (s *Store) UpdateEventStatus(ctx context.Context, eventID, statusID uuid.UUID) (*interfaces.EventRecord, error) {
	record, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	id := statusID
	record.DeliveryStatusID = &id
	record.UpdatedAt = s.now()
	updated, err := s.events.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	return updated.record(), nil
}

func (s *Store) ListImages(ctx context.Context, eventID uuid.UUID) ([]interfaces.ImageRecord, error) {
	records, err := s.images.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.ImageRecord, 0, len(records))
	for _, record := range records {
		out = append(out, record.record())
	}
	return out, nil
}

// BulkUpdateImages applies the update image by image; a missing image fails only
// its own entry. The comment is kept only for RE_EDIT_SUGGESTED.
func (s *Store) BulkUpdateImages(ctx context.Context, imageIDs []uuid.UUID, update interfaces.ImageUpdate) ([]interfaces.ItemResult, error) {
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	status, ok := cat.ImageStatusByID(update.StatusID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStatusUnknown, update.StatusID)
	}

	results := make([]interfaces.ItemResult, 0, len(imageIDs))
	for _, id := range imageIDs {
		err := s.mutate(ctx, id, func(record *Image) {
			record.StatusID = status.ID
			record.Comment = nil
			if status.Code == domain.ImageStatusReEditSuggested && update.Comment != nil {
				comment := strings.TrimSpace(*update.Comment)
				record.Comment = &comment
			}
		})
		results = append(results, itemResult(id, err))
	}
	return results, nil
}

// ReuploadImages pairs imageIDs[i] with files[i], replaces the file and moves
// the image to RE_EDIT_DONE.
func (s *Store) ReuploadImages(ctx context.Context, imageIDs []uuid.UUID, files []interfaces.UploadFile) (*interfaces.ReuploadResult, error) {
	if len(imageIDs) != len(files) {
		return nil, fmt.Errorf("%w: %d images, %d files", ErrFilesMismatch, len(imageIDs), len(files))
	}
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	done, ok := cat.ImageStatusByCode(domain.ImageStatusReEditDone)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStatusUnknown, domain.ImageStatusReEditDone)
	}

	result := &interfaces.ReuploadResult{}
	for idx, id := range imageIDs {
		file := files[idx]
		err := s.mutate(ctx, id, func(record *Image) {
			record.StatusID = done.ID
			record.Comment = nil
			record.FileName = file.Name()
			record.Size = file.Size()
		})
		entry := interfaces.FileResult{FileName: file.Name(), Success: err == nil}
		if err != nil {
			entry.Message = err.Error()
			result.Failed++
		} else {
			result.Successful++
		}
		result.Results = append(result.Results, entry)
	}
	return result, nil
}

func (s *Store) ApproveImages(ctx context.Context, imageIDs []uuid.UUID) (*interfaces.ApproveResult, error) {
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	approved, ok := cat.ImageStatusByCode(domain.ImageStatusApproved)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStatusUnknown, domain.ImageStatusApproved)
	}
	result := &interfaces.ApproveResult{}
	for _, id := range imageIDs {
		if err := s.mutate(ctx, id, func(record *Image) {
			record.StatusID = approved.ID
			record.Comment = nil
		}); err == nil {
			result.ApprovedCount++
		}
	}
	return result, nil
}

// UpdateSortOrder assigns dense positions 1..n following ordered.
func (s *Store) UpdateSortOrder(ctx context.Context, eventID uuid.UUID, ordered []uuid.UUID) error {
	records, err := s.images.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*Image, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	if len(ordered) != len(records) {
		return fmt.Errorf("%w: got %d of %d", ErrSortOrderIncomplete, len(ordered), len(records))
	}
	now := s.now()
	updates := make([]*Image, 0, len(ordered))
	seen := make(map[uuid.UUID]struct{}, len(ordered))
	for idx, id := range ordered {
		record, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrImageNotInEvent, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrSortOrderIncomplete, id)
		}
		seen[id] = struct{}{}
		record.SortOrder = idx + 1
		record.UpdatedAt = now
		updates = append(updates, record)
	}
	return s.images.UpdateSortOrders(ctx, updates)
}

func (s *Store) SetProjectCover(ctx context.Context, projectID uuid.UUID, slot interfaces.CoverSlot, imageURL string) error {
	_, err := s.covers.Upsert(ctx, &ProjectCover{
		ID:        identity.UUID("go-albums:project_cover:" + projectID.String() + ":" + string(slot)),
		ProjectID: projectID,
		Slot:      string(slot),
		URL:       imageURL,
		UpdatedAt: s.now(),
	})
	return err
}

// Covers returns the cover url per slot for a project.
func (s *Store) Covers(ctx context.Context, projectID uuid.UUID) (map[interfaces.CoverSlot]string, error) {
	records, err := s.covers.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make(map[interfaces.CoverSlot]string, len(records))
	for _, record := range records {
		out[interfaces.CoverSlot(record.Slot)] = record.URL
	}
	return out, nil
}

// SetImageStatus forces an image status by code. It backs externally driven
// changes such as a client selecting or an operator discarding an image.
func (s *Store) SetImageStatus(ctx context.Context, imageID uuid.UUID, code domain.ImageStatusCode) error {
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return err
	}
	status, ok := cat.ImageStatusByCode(code)
	if !ok {
		return fmt.Errorf("%w: %s", ErrStatusUnknown, code)
	}
	return s.mutate(ctx, imageID, func(record *Image) {
		record.StatusID = status.ID
		if code != domain.ImageStatusReEditSuggested {
			record.Comment = nil
		}
	})
}

func (s *Store) mutate(ctx context.Context, id uuid.UUID, fn func(*Image)) error {
	record, err := s.images.GetByID(ctx, id)
	if err != nil {
		return err
	}
	fn(record)
	record.UpdatedAt = s.now()
	_, err = s.images.Update(ctx, record)
	return err
}

func itemResult(id uuid.UUID, err error) interfaces.ItemResult {
	if err != nil {
		return interfaces.ItemResult{ID: id, Success: false, Message: err.Error()}
	}
	return interfaces.ItemResult{ID: id, Success: true}
}
