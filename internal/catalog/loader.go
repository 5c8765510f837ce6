package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

// ErrCatalogAPIRequired indicates the loader was built without a collaborator.
var ErrCatalogAPIRequired = errors.New("catalog: catalog api required")

// Provider resolves the current status catalog.
type Provider interface {
	Catalog(ctx context.Context) (*Catalog, error)
}

// Loader fetches both catalogs from the collaborator on every call.
type Loader struct {
	api interfaces.CatalogAPI
}

var _ Provider = (*Loader)(nil)

// NewLoader constructs a Loader backed by api.
func NewLoader(api interfaces.CatalogAPI) *Loader {
	return &Loader{api: api}
}

// Catalog satisfies Provider.
func (l *Loader) Catalog(ctx context.Context) (*Catalog, error) {
	return l.Load(ctx)
}

// Load issues both catalog reads concurrently. The catalog is only built after
// both reads resolve; any failure discards the other result.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	if l == nil || l.api == nil {
		return nil, ErrCatalogAPIRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		wg         sync.WaitGroup
		deliveries []interfaces.DeliveryStatusRecord
		images     []interfaces.ImageStatusRecord
		deliverErr error
		imageErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		deliveries, deliverErr = l.api.GetEventDeliveryStatuses(ctx)
	}()
	go func() {
		defer wg.Done()
		images, imageErr = l.api.GetImageStatuses(ctx)
	}()
	wg.Wait()

	if err := errors.Join(deliverErr, imageErr); err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	return FromRecords(deliveries, images)
}

// FromRecords builds a catalog from collaborator records.
func FromRecords(deliveries []interfaces.DeliveryStatusRecord, images []interfaces.ImageStatusRecord) (*Catalog, error) {
	deliveryEntries := make([]EventDeliveryStatus, 0, len(deliveries))
	for _, record := range deliveries {
		deliveryEntries = append(deliveryEntries, EventDeliveryStatus{
			ID:          record.ID,
			Code:        record.Code,
			Description: record.Description,
			Step:        record.Step,
		})
	}
	imageEntries := make([]ImageStatus, 0, len(images))
	for _, record := range images {
		imageEntries = append(imageEntries, ImageStatus{
			ID:          record.ID,
			Code:        domain.NormalizeImageStatusCode(record.Code),
			Description: record.Description,
		})
	}
	return New(deliveryEntries, imageEntries)
}

const cacheKey = "albums:catalog"

// CachedProvider memoises the loaded catalog for a session.
type CachedProvider struct {
	source Provider
	cache  interfaces.CacheProvider
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	current  *Catalog
	loadedAt time.Time
}

var _ Provider = (*CachedProvider)(nil)

// CachedProviderOption configures a CachedProvider.
type CachedProviderOption func(*CachedProvider)

// WithCache mirrors the loaded catalog into an external cache provider.
func WithCache(cache interfaces.CacheProvider) CachedProviderOption {
	return func(p *CachedProvider) {
		p.cache = cache
	}
}

// WithTTL bounds how long a loaded catalog is reused. Zero keeps it for the
// lifetime of the provider.
func WithTTL(ttl time.Duration) CachedProviderOption {
	return func(p *CachedProvider) {
		if ttl >= 0 {
			p.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) CachedProviderOption {
	return func(p *CachedProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewCachedProvider wraps source with session caching.
func NewCachedProvider(source Provider, opts ...CachedProviderOption) *CachedProvider {
	p := &CachedProvider{
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Catalog returns the cached catalog, loading it on first use or after expiry.
func (p *CachedProvider) Catalog(ctx context.Context) (*Catalog, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && !p.expired() {
		return p.current, nil
	}
	if p.cache != nil {
		if value, err := p.cache.Get(ctx, cacheKey); err == nil {
			if cat, ok := value.(*Catalog); ok && cat != nil {
				p.current = cat
				p.loadedAt = p.now()
				return cat, nil
			}
		}
	}

	cat, err := p.source.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	p.current = cat
	p.loadedAt = p.now()
	if p.cache != nil {
		_ = p.cache.Set(ctx, cacheKey, cat, p.ttl)
	}
	return cat, nil
}

// Invalidate drops the cached catalog so the next call reloads it.
func (p *CachedProvider) Invalidate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = nil
	p.loadedAt = time.Time{}
	if p.cache != nil {
		return p.cache.Delete(ctx, cacheKey)
	}
	return nil
}

func (p *CachedProvider) expired() bool {
	if p.ttl <= 0 {
		return false
	}
	return p.now().Sub(p.loadedAt) >= p.ttl
}

// Static serves a fixed catalog.
type Static struct {
	cat *Catalog
}

// NewStatic wraps an already built catalog as a Provider.
func NewStatic(cat *Catalog) Static {
	return Static{cat: cat}
}

func (s Static) Catalog(context.Context) (*Catalog, error) {
	if s.cat == nil {
		return nil, ErrDeliveryStatusesRequired
	}
	return s.cat, nil
}
