package images

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EventRepository persists client events.
type EventRepository interface {
	Create(ctx context.Context, record *Event) (*Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	Update(ctx context.Context, record *Event) (*Event, error)
}

// ImageRepository persists event images.
type ImageRepository interface {
	Create(ctx context.Context, record *Image) (*Image, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Image, error)
	Update(ctx context.Context, record *Image) (*Image, error)
	UpdateSortOrders(ctx context.Context, records []*Image) error
}

// CoverRepository persists project cover assignments.
type CoverRepository interface {
	Upsert(ctx context.Context, record *ProjectCover) (*ProjectCover, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*ProjectCover, error)
}

// NotFoundError is returned when a record cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func NewEventRepository(db *bun.DB) repository.Repository[*Event] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Event]{
		NewRecord: func() *Event { return &Event{} },
		GetID: func(e *Event) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Event, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(e *Event) string {
			if e == nil {
				return ""
			}
			return e.ID.String()
		},
	})
}

func NewImageRepository(db *bun.DB) repository.Repository[*Image] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Image]{
		NewRecord: func() *Image { return &Image{} },
		GetID: func(i *Image) uuid.UUID {
			return i.ID
		},
		SetID: func(i *Image, id uuid.UUID) {
			i.ID = id
		},
		GetIdentifier: func() string {
			return "storage_key"
		},
		GetIdentifierValue: func(i *Image) string {
			return i.StorageKey
		},
	})
}

func NewProjectCoverRepository(db *bun.DB) repository.Repository[*ProjectCover] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ProjectCover]{
		NewRecord: func() *ProjectCover { return &ProjectCover{} },
		GetID: func(c *ProjectCover) uuid.UUID {
			return c.ID
		},
		SetID: func(c *ProjectCover, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(c *ProjectCover) string {
			if c == nil {
				return ""
			}
			return c.ID.String()
		},
	})
}
