package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrTenantRequired             = errors.New("albums config: tenant id is required")
	ErrStorageProviderUnknown     = errors.New("albums config: storage provider is invalid")
	ErrStorageDialectUnknown      = errors.New("albums config: storage dialect is invalid")
	ErrCacheTTLInvalid            = errors.New("albums config: cache ttl must be zero or positive")
	ErrUploadChunkSizeInvalid     = errors.New("albums config: upload chunk size must be positive")
	ErrUploadTimeoutInvalid       = errors.New("albums config: upload request timeout must be zero or positive")
	ErrPreviewDimensionInvalid    = errors.New("albums config: preview max dimension must be positive when previews are enabled")
	ErrMetricsNamespaceRequired   = errors.New("albums config: metrics namespace is required when metrics are enabled")
	ErrCoverConfirmationsRequired = errors.New("albums config: cover confirmation requires the confirmations feature")
	ErrLoggingProviderRequired    = errors.New("albums config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown     = errors.New("albums config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("albums config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("albums config: logging format is invalid")
)

// DefaultChunkSize is the number of files sent per upload request.
const DefaultChunkSize = 10

// Config aggregates feature flags and adapter bindings for the albums module.
type Config struct {
	Enabled  bool
	TenantID string
	Storage  StorageConfig
	Cache    CacheConfig
	Upload   UploadConfig
	Review   ReviewConfig
	Features Features
	Logging  LoggingConfig
	Workflow WorkflowConfig
}

// StorageConfig selects the persistence backend for catalogs, events and images.
type StorageConfig struct {
	// Provider is "memory" or "bun".
	Provider string
	// Dialect is "sqlite" or "postgres"; only read for the bun provider.
	Dialect string
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// UploadConfig tunes the upload pipeline.
type UploadConfig struct {
	ChunkSize           int
	RequestTimeout      time.Duration
	PreviewMaxDimension int
	MetricsNamespace    string
}

// ReviewConfig tunes bulk review actions.
type ReviewConfig struct {
	RequireCoverConfirmation bool
}

// Features toggles module functionality.
type Features struct {
	Logger        bool
	Metrics       bool
	Previews      bool
	Confirmations bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// WorkflowConfig overrides the built-in image review workflow.
type WorkflowConfig struct {
	Definitions []WorkflowDefinitionConfig
}

// WorkflowDefinitionConfig declares a workflow for an entity type.
type WorkflowDefinitionConfig struct {
	Entity      string
	States      []WorkflowStateConfig
	Transitions []WorkflowTransitionConfig
}

// WorkflowStateConfig declares a workflow state.
type WorkflowStateConfig struct {
	Name        string
	Description string
	Terminal    bool
	Initial     bool
}

// WorkflowTransitionConfig declares a named transition between two states.
type WorkflowTransitionConfig struct {
	Name        string
	Description string
	From        string
	To          string
}

// DefaultConfig returns defaults suitable for an in-memory session.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		TenantID: "default",
		Storage: StorageConfig{
			Provider: "memory",
			Dialect:  "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: 10 * time.Minute,
		},
		Upload: UploadConfig{
			ChunkSize:           DefaultChunkSize,
			RequestTimeout:      2 * time.Minute,
			PreviewMaxDimension: 320,
			MetricsNamespace:    "albums",
		},
		Features: Features{
			Previews: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.TenantID) == "" {
		return ErrTenantRequired
	}
	switch provider := normalize(cfg.Storage.Provider); provider {
	case "", "memory":
	case "bun":
		if dialect := normalize(cfg.Storage.Dialect); dialect != "" && !isSupportedDialect(dialect) {
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, dialect)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Upload.ChunkSize <= 0 {
		return fmt.Errorf("%w: %d", ErrUploadChunkSizeInvalid, cfg.Upload.ChunkSize)
	}
	if cfg.Upload.RequestTimeout < 0 {
		return ErrUploadTimeoutInvalid
	}
	if cfg.Features.Previews && cfg.Upload.PreviewMaxDimension <= 0 {
		return ErrPreviewDimensionInvalid
	}
	if cfg.Features.Metrics && strings.TrimSpace(cfg.Upload.MetricsNamespace) == "" {
		return ErrMetricsNamespaceRequired
	}
	if cfg.Review.RequireCoverConfirmation && !cfg.Features.Confirmations {
		return ErrCoverConfirmationsRequired
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// ChunkSizeOrDefault returns the configured chunk size, falling back to
// DefaultChunkSize for non-positive values.
func (c UploadConfig) ChunkSizeOrDefault() int {
	if c.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return c.ChunkSize
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDialect(dialect string) bool {
	switch dialect {
	case "sqlite", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
