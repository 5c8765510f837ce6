package catalog

import (
	"context"
	"fmt"

	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StatusRepository persists both status catalogs.
type StatusRepository interface {
	ListDeliveryStatuses(ctx context.Context) ([]*DeliveryStatusModel, error)
	ListImageStatuses(ctx context.Context) ([]*ImageStatusModel, error)
	CreateDeliveryStatus(ctx context.Context, record *DeliveryStatusModel) (*DeliveryStatusModel, error)
	CreateImageStatus(ctx context.Context, record *ImageStatusModel) (*ImageStatusModel, error)
}

// NotFoundError is returned when a catalog record cannot be located.
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

func NewDeliveryStatusRepository(db *bun.DB) repository.Repository[*DeliveryStatusModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*DeliveryStatusModel]{
		NewRecord: func() *DeliveryStatusModel { return &DeliveryStatusModel{} },
		GetID: func(s *DeliveryStatusModel) uuid.UUID {
			return s.ID
		},
		SetID: func(s *DeliveryStatusModel, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(s *DeliveryStatusModel) string {
			return s.Code
		},
	})
}

func NewImageStatusRepository(db *bun.DB) repository.Repository[*ImageStatusModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ImageStatusModel]{
		NewRecord: func() *ImageStatusModel { return &ImageStatusModel{} },
		GetID: func(s *ImageStatusModel) uuid.UUID {
			return s.ID
		},
		SetID: func(s *ImageStatusModel, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(s *ImageStatusModel) string {
			return s.Code
		},
	})
}

// RepositoryAPI exposes a StatusRepository through the catalog collaborator contract.
type RepositoryAPI struct {
	repo StatusRepository
}

var _ interfaces.CatalogAPI = (*RepositoryAPI)(nil)

// NewRepositoryAPI adapts repo to interfaces.CatalogAPI.
func NewRepositoryAPI(repo StatusRepository) *RepositoryAPI {
	return &RepositoryAPI{repo: repo}
}

func (a *RepositoryAPI) GetEventDeliveryStatuses(ctx context.Context) ([]interfaces.DeliveryStatusRecord, error) {
	records, err := a.repo.ListDeliveryStatuses(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.DeliveryStatusRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		out = append(out, interfaces.DeliveryStatusRecord{
			ID:          record.ID,
			Code:        record.Code,
			Description: record.Description,
			Step:        record.Step,
		})
	}
	return out, nil
}

func (a *RepositoryAPI) GetImageStatuses(ctx context.Context) ([]interfaces.ImageStatusRecord, error) {
	records, err := a.repo.ListImageStatuses(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.ImageStatusRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		out = append(out, interfaces.ImageStatusRecord{
			ID:          record.ID,
			Code:        record.Code,
			Description: record.Description,
		})
	}
	return out, nil
}
