package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// DeliveryStatusRecord is the wire shape of an event delivery status catalog entry.
type DeliveryStatusRecord struct {
	ID          uuid.UUID
	Code        string
	Description string
	Step        int
}

// ImageStatusRecord is the wire shape of an image status catalog entry.
type ImageStatusRecord struct {
	ID          uuid.UUID
	Code        string
	Description string
}

// CatalogAPI exposes the administrator maintained status catalogs. Both lists are
// read-only from the engine's point of view.
type CatalogAPI interface {
	GetEventDeliveryStatuses(ctx context.Context) ([]DeliveryStatusRecord, error)
	GetImageStatuses(ctx context.Context) ([]ImageStatusRecord, error)
}
