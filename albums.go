package albums

import (
	"context"

	"github.com/goliatone/go-albums/internal/bulk"
	"github.com/goliatone/go-albums/internal/catalog"
	albumcmd "github.com/goliatone/go-albums/internal/commands/album"
	"github.com/goliatone/go-albums/internal/delivery"
	"github.com/goliatone/go-albums/internal/di"
	"github.com/goliatone/go-albums/internal/gallery"
	"github.com/goliatone/go-albums/internal/images"
	"github.com/goliatone/go-albums/internal/upload"
	"github.com/google/uuid"
)

// Option customises the module container.
type Option = di.Option

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithCache          = di.WithCache
	WithSessionCache   = di.WithSessionCache
	WithBunDB          = di.WithBunDB
	WithNotifier       = di.WithNotifier
	WithStorageAPI     = di.WithStorageAPI
	WithRegisterer     = di.WithRegisterer
	WithConfirmer      = di.WithConfirmer
	WithWorkflowEngine = di.WithWorkflowEngine
	WithResultHook     = di.WithResultHook
	WithReportHook     = di.WithReportHook
)

// DeliveryService exports the delivery progression contract.
type DeliveryService = delivery.Service

// DeliveryState exports the derived delivery state of an event.
type DeliveryState = delivery.State

// BulkCoordinator exports the bulk review action coordinator.
type BulkCoordinator = *bulk.Coordinator

// BulkResult exports the per-item outcome of a bulk action.
type BulkResult = bulk.Result

// GalleryView exports the per-event gallery view.
type GalleryView = *gallery.View

// UploadController exports the upload session controller.
type UploadController = *upload.Controller

// UploadReport exports the outcome of an upload run.
type UploadReport = upload.Report

// Catalog exports the loaded status catalogs.
type Catalog = catalog.Catalog

// CommandHandlers exports the album command handler set.
type CommandHandlers = *albumcmd.HandlerSet

// CommandRegistry exports the registration contract used by RegisterCommands.
type CommandRegistry = albumcmd.CommandRegistry

// Module represents the top level albums runtime façade.
type Module struct {
	container *di.Container
}

// New constructs an albums module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Bootstrap seeds the stock status catalogs into an empty status store.
func (m *Module) Bootstrap(ctx context.Context) error {
	return m.container.Bootstrap(ctx)
}

// Catalog returns the session cached status catalogs.
func (m *Module) Catalog(ctx context.Context) (*Catalog, error) {
	return m.container.Catalogs().Catalog(ctx)
}

// InvalidateCatalog drops the cached catalogs so the next read reloads them.
func (m *Module) InvalidateCatalog(ctx context.Context) error {
	return m.container.Catalogs().Invalidate(ctx)
}

// Store returns the event and image collaborator.
func (m *Module) Store() *images.Store {
	return m.container.Store()
}

// Delivery returns the delivery progression service.
func (m *Module) Delivery() DeliveryService {
	return m.container.DeliveryService()
}

// Bulk returns the bulk review action coordinator.
func (m *Module) Bulk() BulkCoordinator {
	return m.container.Coordinator()
}

// Gallery returns the view for eventID. Command results for the event refresh it.
func (m *Module) Gallery(eventID uuid.UUID) GalleryView {
	return m.container.GalleryView(eventID)
}

// Uploads opens an upload session for eventID.
func (m *Module) Uploads(eventID uuid.UUID) UploadController {
	return m.container.NewUploadController(eventID)
}

// RegisterCommands builds the album command handlers and registers them with reg.
func (m *Module) RegisterCommands(reg CommandRegistry) (CommandHandlers, error) {
	return m.container.RegisterCommands(reg)
}
