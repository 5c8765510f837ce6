package images

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunEventRepository implements EventRepository with optional caching.
type BunEventRepository struct {
	repo repository.Repository[*Event]
}

// NewBunEventRepository creates an event repository without caching.
func NewBunEventRepository(db *bun.DB) *BunEventRepository {
	return NewBunEventRepositoryWithCache(db, nil, nil)
}

// NewBunEventRepositoryWithCache creates an event repository with caching services.
func NewBunEventRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunEventRepository {
	return &BunEventRepository{repo: wrapWithCache(NewEventRepository(db), cacheService, serializer)}
}

func (r *BunEventRepository) Create(ctx context.Context, record *Event) (*Event, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "event", id.String())
	}
	return record, nil
}

func (r *BunEventRepository) Update(ctx context.Context, record *Event) (*Event, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "event", record.ID.String())
	}
	return updated, nil
}

// BunImageRepository implements ImageRepository. Image rows change on every
// review action so they are never cached.
type BunImageRepository struct {
	repo repository.Repository[*Image]
}

// NewBunImageRepository creates an image repository.
func NewBunImageRepository(db *bun.DB) *BunImageRepository {
	return &BunImageRepository{repo: NewImageRepository(db)}
}

func (r *BunImageRepository) Create(ctx context.Context, record *Image) (*Image, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "image", id.String())
	}
	return record, nil
}

func (r *BunImageRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Image, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.event_id = ?", eventID).
				OrderExpr("?TableAlias.sort_order ASC").
				OrderExpr("?TableAlias.file_name ASC")
		}),
	)
	return records, err
}

func (r *BunImageRepository) Update(ctx context.Context, record *Image) (*Image, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "image", record.ID.String())
	}
	return updated, nil
}

func (r *BunImageRepository) UpdateSortOrders(ctx context.Context, records []*Image) error {
	if len(records) == 0 {
		return nil
	}
	_, err := r.repo.UpdateMany(ctx, records,
		repository.UpdateColumns("sort_order", "updated_at"),
	)
	return err
}

// BunCoverRepository implements CoverRepository.
type BunCoverRepository struct {
	repo repository.Repository[*ProjectCover]
}

// NewBunCoverRepository creates a cover repository.
func NewBunCoverRepository(db *bun.DB) *BunCoverRepository {
	return &BunCoverRepository{repo: NewProjectCoverRepository(db)}
}

func (r *BunCoverRepository) Upsert(ctx context.Context, record *ProjectCover) (*ProjectCover, error) {
	_, err := r.repo.GetByID(ctx, record.ID.String())
	if err != nil {
		var notFound *NotFoundError
		if !errors.As(mapRepositoryError(err, "project_cover", record.ID.String()), &notFound) {
			return nil, err
		}
		return r.repo.Create(ctx, record)
	}
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "project_cover", record.ID.String())
	}
	return updated, nil
}

func (r *BunCoverRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*ProjectCover, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.project_id = ?", projectID).
				OrderExpr("?TableAlias.slot ASC")
		}),
	)
	return records, err
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

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
