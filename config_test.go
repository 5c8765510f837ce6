package albums_test

import (
	"errors"
	"testing"

	albums "github.com/goliatone/go-albums"
)

func TestConfigValidateCoverConfirmationRequiresConfirmations(t *testing.T) {
	cfg := albums.DefaultConfig()
	cfg.Review.RequireCoverConfirmation = true

	if err := cfg.Validate(); !errors.Is(err, albums.ErrCoverConfirmationsRequired) {
		t.Fatalf("expected ErrCoverConfirmationsRequired, got %v", err)
	}
}

func TestConfigValidateStorageProviderUnknown(t *testing.T) {
	cfg := albums.DefaultConfig()
	cfg.Storage.Provider = "redis"

	if err := cfg.Validate(); !errors.Is(err, albums.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestConfigValidateMetricsNamespaceRequired(t *testing.T) {
	cfg := albums.DefaultConfig()
	cfg.Features.Metrics = true
	cfg.Upload.MetricsNamespace = " "

	if err := cfg.Validate(); !errors.Is(err, albums.ErrMetricsNamespaceRequired) {
		t.Fatalf("expected ErrMetricsNamespaceRequired, got %v", err)
	}
}

func TestConfigValidateChunkSize(t *testing.T) {
	cfg := albums.DefaultConfig()
	cfg.Upload.ChunkSize = 0

	if err := cfg.Validate(); !errors.Is(err, albums.ErrUploadChunkSizeInvalid) {
		t.Fatalf("expected ErrUploadChunkSizeInvalid, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := albums.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, albums.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := albums.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}
