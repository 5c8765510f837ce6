package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-albums/internal/adapters/noop"
	"github.com/goliatone/go-albums/internal/bulk"
	"github.com/goliatone/go-albums/internal/catalog"
	albumcmd "github.com/goliatone/go-albums/internal/commands/album"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/internal/gallery"
	"github.com/goliatone/go-albums/internal/images"
	"github.com/goliatone/go-albums/internal/logging"
	"github.com/goliatone/go-albums/internal/logging/console"
	"github.com/goliatone/go-albums/internal/logging/gologger"
	"github.com/goliatone/go-albums/internal/review"
	"github.com/goliatone/go-albums/internal/runtimeconfig"
	"github.com/goliatone/go-albums/internal/upload"
	"github.com/goliatone/go-albums/internal/workflow"
	"github.com/goliatone/go-albums/internal/workflow/simple"
	"github.com/goliatone/go-albums/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// ErrBunDBRequired is returned when the bun storage provider is selected without a database.
var ErrBunDBRequired = errors.New("di: bun storage provider requires a database")

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	cache          interfaces.CacheProvider
	notifier       interfaces.Notifier
	storage        interfaces.StorageAPI
	registerer     prometheus.Registerer
	confirmer      bulk.Confirmer
	engine         interfaces.WorkflowEngine

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	statusRepo catalog.StatusRepository
	eventRepo  images.EventRepository
	imageRepo  images.ImageRepository
	coverRepo  images.CoverRepository

	catalogs    *catalog.CachedProvider
	store       *images.Store
	deliverySvc delivery.Service
	policy      *review.Policy
	coordinator *bulk.Coordinator
	metrics     *upload.Metrics
	previews    *upload.Previews

	onResult albumcmd.ResultHook
	onUpload albumcmd.ReportHook

	mu       sync.Mutex
	views    map[uuid.UUID]*gallery.View
	handlers *albumcmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider selected from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache overrides the repository cache service used by bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithSessionCache mirrors the status catalogs into an external cache provider.
func WithSessionCache(cache interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cache = cache
	}
}

// WithBunDB binds the database used by the bun storage provider.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithNotifier overrides the default no-op notifier.
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(c *Container) {
		c.notifier = notifier
	}
}

// WithStorageAPI overrides the storage collaborator used by upload sessions.
func WithStorageAPI(storage interfaces.StorageAPI) Option {
	return func(c *Container) {
		c.storage = storage
	}
}

// WithRegisterer sets the registry upload metrics are registered with.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// WithConfirmer overrides the confirmer used when confirmations are enabled.
func WithConfirmer(confirmer bulk.Confirmer) Option {
	return func(c *Container) {
		c.confirmer = confirmer
	}
}

// WithWorkflowEngine overrides the engine built from the workflow configuration.
func WithWorkflowEngine(engine interfaces.WorkflowEngine) Option {
	return func(c *Container) {
		c.engine = engine
	}
}

// WithResultHook observes every bulk action result produced by the command handlers.
func WithResultHook(hook albumcmd.ResultHook) Option {
	return func(c *Container) {
		c.onResult = hook
	}
}

// WithReportHook observes every upload report produced by the command handlers.
func WithReportHook(hook albumcmd.ReportHook) Option {
	return func(c *Container) {
		c.onUpload = hook
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:     cfg,
		cache:      noop.Cache(),
		notifier:   noop.Notifier(),
		registerer: prometheus.DefaultRegisterer,
		cacheTTL:   cacheTTL,
		statusRepo: catalog.NewMemoryStatusRepository(),
		eventRepo:  images.NewMemoryEventRepository(),
		imageRepo:  images.NewMemoryImageRepository(),
		coverRepo:  images.NewMemoryCoverRepository(),
		views:      make(map[uuid.UUID]*gallery.View),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureRepositories(); err != nil {
		return nil, err
	}
	if err := c.configureWorkflow(); err != nil {
		return nil, err
	}
	if err := c.configureUploads(); err != nil {
		return nil, err
	}
	c.configureServices()

	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := consoleLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{
			MinLevel: &level,
			Color:    strings.EqualFold(strings.TrimSpace(logCfg.Format), "pretty"),
		})
	}
	return nil
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() error {
	if strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider)) != "bun" {
		return nil
	}
	if c.bunDB == nil {
		return ErrBunDBRequired
	}
	c.statusRepo = catalog.NewBunStatusRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.eventRepo = images.NewBunEventRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.imageRepo = images.NewBunImageRepository(c.bunDB)
	c.coverRepo = images.NewBunCoverRepository(c.bunDB)
	return nil
}

func (c *Container) configureWorkflow() error {
	if c.engine != nil {
		return nil
	}
	definitions, err := workflow.CompileDefinitionConfigs(c.Config.Workflow.Definitions)
	if err != nil {
		return fmt.Errorf("di: workflow definitions: %w", err)
	}
	c.engine = simple.New(simple.WithDefinitions(definitions...))
	return nil
}

func (c *Container) configureUploads() error {
	if c.Config.Features.Metrics {
		metrics, err := upload.NewMetrics(c.Config.Upload.MetricsNamespace, c.registerer)
		if err != nil {
			return fmt.Errorf("di: upload metrics: %w", err)
		}
		c.metrics = metrics
	}
	if c.Config.Features.Previews {
		c.previews = upload.NewPreviews(upload.ThumbnailFactory{MaxDimension: c.Config.Upload.PreviewMaxDimension})
	}
	return nil
}

func (c *Container) configureServices() {
	provider := c.loggerProvider

	source := catalog.NewLoader(catalog.NewRepositoryAPI(c.statusRepo))
	cacheOpts := []catalog.CachedProviderOption{catalog.WithCache(c.cache)}
	if c.Config.Cache.Enabled {
		cacheOpts = append(cacheOpts, catalog.WithTTL(c.Config.Cache.DefaultTTL))
	}
	c.catalogs = catalog.NewCachedProvider(source, cacheOpts...)

	c.store = images.NewStore(c.eventRepo, c.imageRepo, c.coverRepo, c.catalogs)
	if c.storage == nil {
		c.storage = upload.NewMemoryStorage(c.store)
	}

	c.deliverySvc = delivery.NewService(c.store, c.store, c.catalogs,
		delivery.WithLogger(logging.DeliveryLogger(provider)),
		delivery.WithNotifier(c.notifier),
	)
	c.policy = review.NewPolicy(c.engine)

	bulkOpts := []bulk.Option{
		bulk.WithLogger(logging.BulkLogger(provider)),
		bulk.WithNotifier(c.notifier),
	}
	if c.Config.Features.Confirmations {
		if c.confirmer == nil {
			c.confirmer = bulk.NewChannelConfirmer()
		}
		bulkOpts = append(bulkOpts,
			bulk.WithConfirmer(c.confirmer),
			bulk.WithCoverConfirmation(c.Config.Review.RequireCoverConfirmation),
		)
	}
	c.coordinator = bulk.NewCoordinator(c.store, c.store, c.catalogs, c.policy, c.deliverySvc, bulkOpts...)
}

// Bootstrap seeds the stock status catalogs when the status repository is empty.
func (c *Container) Bootstrap(ctx context.Context) error {
	existing, err := c.statusRepo.ListDeliveryStatuses(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	if err := catalog.SeedDefaults(ctx, c.statusRepo); err != nil {
		return err
	}
	logging.CatalogLogger(c.loggerProvider).Info("catalog.seeded", "provider", c.Config.Storage.Provider)
	return c.catalogs.Invalidate(ctx)
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Catalogs returns the cached status catalog provider.
func (c *Container) Catalogs() *catalog.CachedProvider {
	return c.catalogs
}

// Store returns the event and image collaborator.
func (c *Container) Store() *images.Store {
	return c.store
}

// DeliveryService returns the delivery progression service.
func (c *Container) DeliveryService() delivery.Service {
	return c.deliverySvc
}

// ReviewPolicy returns the image review policy.
func (c *Container) ReviewPolicy() *review.Policy {
	return c.policy
}

// Coordinator returns the shared bulk action coordinator.
func (c *Container) Coordinator() *bulk.Coordinator {
	return c.coordinator
}

// Confirmer returns the bulk confirmer, nil when confirmations are disabled.
func (c *Container) Confirmer() bulk.Confirmer {
	if !c.Config.Features.Confirmations {
		return nil
	}
	return c.confirmer
}

// Metrics returns the upload metrics, nil when metrics are disabled.
func (c *Container) Metrics() *upload.Metrics {
	return c.metrics
}

// Previews returns the shared preview registry, nil when previews are disabled.
func (c *Container) Previews() *upload.Previews {
	return c.previews
}

// StorageAPI returns the storage collaborator used by upload sessions.
func (c *Container) StorageAPI() interfaces.StorageAPI {
	return c.storage
}

// NewUploadController opens an upload session for eventID.
func (c *Container) NewUploadController(eventID uuid.UUID) *upload.Controller {
	opts := []upload.Option{
		upload.WithConfig(c.Config.Upload),
		upload.WithTenantID(c.Config.TenantID),
		upload.WithNotifier(c.notifier),
		upload.WithLogger(logging.UploadLogger(c.loggerProvider)),
		upload.WithMetrics(c.metrics),
	}
	if c.previews != nil {
		opts = append(opts, upload.WithPreviews(c.previews))
	}
	return upload.NewController(c.storage, eventID, opts...)
}

// GalleryView returns the view registered for eventID, creating it on first use.
// Command results for the event are routed to the view.
func (c *Container) GalleryView(eventID uuid.UUID) *gallery.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if view, ok := c.views[eventID]; ok {
		return view
	}
	view := gallery.NewView(eventID, c.store, c.deliverySvc, c.catalogs,
		gallery.WithLogger(logging.GalleryLogger(c.loggerProvider)),
	)
	c.views[eventID] = view
	return view
}

func (c *Container) registeredView(eventID uuid.UUID) *gallery.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views[eventID]
}

func (c *Container) handleResult(ctx context.Context, eventID uuid.UUID, result *bulk.Result) {
	if view := c.registeredView(eventID); view != nil && result != nil {
		if result.SuccessCount > 0 {
			if err := view.Refresh(ctx); err != nil {
				logging.GalleryLogger(c.loggerProvider).Warn("gallery.refresh.failed", "event_id", eventID, "error", err)
			}
		}
		view.ActionCompleted(result)
	}
	if c.onResult != nil {
		c.onResult(ctx, eventID, result)
	}
}

func (c *Container) handleReport(ctx context.Context, eventID uuid.UUID, report *upload.Report) {
	if view := c.registeredView(eventID); view != nil && report != nil && report.Uploaded > 0 {
		if err := view.Refresh(ctx); err != nil {
			logging.GalleryLogger(c.loggerProvider).Warn("gallery.refresh.failed", "event_id", eventID, "error", err)
		}
	}
	if c.onUpload != nil {
		c.onUpload(ctx, eventID, report)
	}
}

// RegisterCommands builds the album command handlers once and registers them with
// reg. A nil registry only builds the handlers.
func (c *Container) RegisterCommands(reg albumcmd.CommandRegistry) (*albumcmd.HandlerSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handlers != nil {
		if reg != nil {
			for _, handler := range c.handlers.All() {
				if err := reg.RegisterCommand(handler); err != nil {
					return nil, err
				}
			}
		}
		return c.handlers, nil
	}
	set, err := albumcmd.RegisterAlbumCommands(reg, albumcmd.Dependencies{
		Delivery: c.deliverySvc,
		Bulk:     c.coordinator,
		Uploads:  c.NewUploadController,
		OnResult: c.handleResult,
		OnUpload: c.handleReport,
	}, c.loggerProvider)
	if err != nil {
		return nil, err
	}
	c.handlers = set
	return set, nil
}
