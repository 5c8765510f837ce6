package albums

import "github.com/goliatone/go-albums/internal/runtimeconfig"

var (
	ErrTenantRequired             = runtimeconfig.ErrTenantRequired
	ErrStorageProviderUnknown     = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown      = runtimeconfig.ErrStorageDialectUnknown
	ErrUploadChunkSizeInvalid     = runtimeconfig.ErrUploadChunkSizeInvalid
	ErrPreviewDimensionInvalid    = runtimeconfig.ErrPreviewDimensionInvalid
	ErrMetricsNamespaceRequired   = runtimeconfig.ErrMetricsNamespaceRequired
	ErrCoverConfirmationsRequired = runtimeconfig.ErrCoverConfirmationsRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config                   = runtimeconfig.Config
	StorageConfig            = runtimeconfig.StorageConfig
	CacheConfig              = runtimeconfig.CacheConfig
	UploadConfig             = runtimeconfig.UploadConfig
	ReviewConfig             = runtimeconfig.ReviewConfig
	Features                 = runtimeconfig.Features
	LoggingConfig            = runtimeconfig.LoggingConfig
	WorkflowConfig           = runtimeconfig.WorkflowConfig
	WorkflowDefinitionConfig = runtimeconfig.WorkflowDefinitionConfig
	WorkflowStateConfig      = runtimeconfig.WorkflowStateConfig
	WorkflowTransitionConfig = runtimeconfig.WorkflowTransitionConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
