package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-albums/pkg/interfaces"
)

const (
	rootModule          = "albums"
	catalogModule       = "albums.catalog"
	deliveryModule      = "albums.delivery"
	reviewModule        = "albums.review"
	bulkModule          = "albums.bulk"
	uploadModule        = "albums.upload"
	galleryModule       = "albums.gallery"
	notificationsModule = "albums.notifications"
)

const (
	fieldEventID  = "event_id"
	fieldBatchID  = "batch_id"
	fieldTenantID = "tenant_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is attached
// as a structured field so entries can be filtered per component.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// CatalogLogger returns the logger namespace reserved for status catalogs.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// DeliveryLogger returns the logger namespace reserved for event delivery progression.
func DeliveryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, deliveryModule)
}

// ReviewLogger returns the logger namespace reserved for the image review workflow.
func ReviewLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reviewModule)
}

// BulkLogger returns the logger namespace reserved for bulk actions.
func BulkLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, bulkModule)
}

// UploadLogger returns the logger namespace reserved for the upload pipeline.
func UploadLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, uploadModule)
}

// GalleryLogger returns the logger namespace reserved for gallery view state.
func GalleryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, galleryModule)
}

// NotificationsLogger returns the logger namespace reserved for best-effort notices.
func NotificationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, notificationsModule)
}

// WithUploadContext enriches the logger with the batch, tenant and event being
// uploaded. Empty values are ignored.
func WithUploadContext(logger interfaces.Logger, batchID, tenantID, eventID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(batchID); trimmed != "" {
		fields[fieldBatchID] = trimmed
	}
	if trimmed := strings.TrimSpace(tenantID); trimmed != "" {
		fields[fieldTenantID] = trimmed
	}
	if trimmed := strings.TrimSpace(eventID); trimmed != "" {
		fields[fieldEventID] = trimmed
	}
	return WithFields(logger, fields)
}

// WithEvent attaches the client event identifier.
func WithEvent(logger interfaces.Logger, eventID string) interfaces.Logger {
	if strings.TrimSpace(eventID) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldEventID: eventID})
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
