package images

import (
	"time"

	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Event is a deliverable occasion inside a project.
type Event struct {
	bun.BaseModel `bun:"table:client_events,alias:ce"`

	ID               uuid.UUID  `bun:",pk,type:uuid"                   json:"id"`
	ProjectID        uuid.UUID  `bun:"project_id,notnull,type:uuid"     json:"project_id"`
	Name             string     `bun:"name,notnull"                     json:"name"`
	DeliveryStatusID *uuid.UUID `bun:"delivery_status_id,type:uuid"     json:"delivery_status_id,omitempty"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Image is a photo inside an event gallery.
type Image struct {
	bun.BaseModel `bun:"table:event_images,alias:ei"`

	ID         uuid.UUID `bun:",pk,type:uuid"               json:"id"`
	EventID    uuid.UUID `bun:"event_id,notnull,type:uuid"   json:"event_id"`
	StatusID   uuid.UUID `bun:"status_id,notnull,type:uuid"  json:"status_id"`
	Comment    *string   `bun:"comment"                      json:"comment,omitempty"`
	SortOrder  int       `bun:"sort_order,notnull"           json:"sort_order"`
	FileName   string    `bun:"file_name,notnull"            json:"file_name"`
	StorageKey string    `bun:"storage_key"                  json:"storage_key,omitempty"`
	URL        string    `bun:"url"                          json:"url"`
	Size       int64     `bun:"size,notnull,default:0"       json:"size"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// ProjectCover holds the image url assigned to one device scoped cover slot.
type ProjectCover struct {
	bun.BaseModel `bun:"table:project_covers,alias:pc"`

	ID        uuid.UUID `bun:",pk,type:uuid"               json:"id"`
	ProjectID uuid.UUID `bun:"project_id,notnull,type:uuid" json:"project_id"`
	Slot      string    `bun:"slot,notnull"                 json:"slot"`
	URL       string    `bun:"url,notnull"                  json:"url"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func (e *Event) record() *interfaces.EventRecord {
	if e == nil {
		return nil
	}
	out := &interfaces.EventRecord{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		Name:      e.Name,
		UpdatedAt: e.UpdatedAt,
	}
	if e.DeliveryStatusID != nil {
		id := *e.DeliveryStatusID
		out.DeliveryStatusID = &id
	}
	return out
}

func (i *Image) record() interfaces.ImageRecord {
	out := interfaces.ImageRecord{
		ID:        i.ID,
		EventID:   i.EventID,
		StatusID:  i.StatusID,
		SortOrder: i.SortOrder,
		FileName:  i.FileName,
		URL:       i.URL,
		Size:      i.Size,
	}
	if i.Comment != nil {
		comment := *i.Comment
		out.Comment = &comment
	}
	return out
}

func cloneEvent(e *Event) *Event {
	if e == nil {
		return nil
	}
	cloned := *e
	if e.DeliveryStatusID != nil {
		id := *e.DeliveryStatusID
		cloned.DeliveryStatusID = &id
	}
	return &cloned
}

func cloneImage(i *Image) *Image {
	if i == nil {
		return nil
	}
	cloned := *i
	if i.Comment != nil {
		comment := *i.Comment
		cloned.Comment = &comment
	}
	return &cloned
}
