package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DeliveryStatusModel is the persisted form of an event delivery status.
type DeliveryStatusModel struct {
	bun.BaseModel `bun:"table:event_delivery_statuses,alias:eds"`

	ID          uuid.UUID `bun:",pk,type:uuid"          json:"id"`
	Code        string    `bun:"code,notnull,unique"     json:"code"`
	Description string    `bun:"description"             json:"description"`
	Step        int       `bun:"step,notnull,unique"     json:"step"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// ImageStatusModel is the persisted form of an image status.
type ImageStatusModel struct {
	bun.BaseModel `bun:"table:image_statuses,alias:ist"`

	ID          uuid.UUID `bun:",pk,type:uuid"          json:"id"`
	Code        string    `bun:"code,notnull,unique"     json:"code"`
	Description string    `bun:"description"             json:"description"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
