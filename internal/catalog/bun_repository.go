package catalog

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"
)

// BunStatusRepository implements StatusRepository with optional caching.
type BunStatusRepository struct {
	deliveries   repository.Repository[*DeliveryStatusModel]
	images       repository.Repository[*ImageStatusModel]
	cacheService cache.CacheService
}

const statusNamespace = "catalog_status"

// NewBunStatusRepository creates a status repository without caching.
func NewBunStatusRepository(db *bun.DB) *BunStatusRepository {
	return NewBunStatusRepositoryWithCache(db, nil, nil)
}

// NewBunStatusRepositoryWithCache creates a status repository with caching services.
func NewBunStatusRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunStatusRepository {
	deliveries := NewDeliveryStatusRepository(db)
	images := NewImageStatusRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		deliveries = repositorycache.New(deliveries, cacheService, serializer)
		images = repositorycache.New(images, cacheService, serializer)
		svc = cacheService
	}
	return &BunStatusRepository{deliveries: deliveries, images: images, cacheService: svc}
}

func (r *BunStatusRepository) ListDeliveryStatuses(ctx context.Context) ([]*DeliveryStatusModel, error) {
	records, _, err := r.deliveries.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.step ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "delivery_status", "")
	}
	return records, nil
}

func (r *BunStatusRepository) ListImageStatuses(ctx context.Context) ([]*ImageStatusModel, error) {
	records, _, err := r.images.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "image_status", "")
	}
	return records, nil
}

func (r *BunStatusRepository) CreateDeliveryStatus(ctx context.Context, record *DeliveryStatusModel) (*DeliveryStatusModel, error) {
	created, err := r.deliveries.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := r.invalidate(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunStatusRepository) CreateImageStatus(ctx context.Context, record *ImageStatusModel) (*ImageStatusModel, error) {
	created, err := r.images.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := r.invalidate(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunStatusRepository) invalidate(ctx context.Context) error {
	if r.cacheService == nil {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, statusNamespace+cache.KeySeparator)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
