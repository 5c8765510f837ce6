package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-albums/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.Upload.ChunkSize != runtimeconfig.DefaultChunkSize {
		t.Fatalf("expected default chunk size %d, got %d", runtimeconfig.DefaultChunkSize, cfg.Upload.ChunkSize)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{
			name:   "blank tenant",
			mutate: func(c *runtimeconfig.Config) { c.TenantID = " " },
			want:   runtimeconfig.ErrTenantRequired,
		},
		{
			name:   "unknown storage provider",
			mutate: func(c *runtimeconfig.Config) { c.Storage.Provider = "redis" },
			want:   runtimeconfig.ErrStorageProviderUnknown,
		},
		{
			name: "unknown dialect",
			mutate: func(c *runtimeconfig.Config) {
				c.Storage.Provider = "bun"
				c.Storage.Dialect = "mysql"
			},
			want: runtimeconfig.ErrStorageDialectUnknown,
		},
		{
			name:   "zero chunk size",
			mutate: func(c *runtimeconfig.Config) { c.Upload.ChunkSize = 0 },
			want:   runtimeconfig.ErrUploadChunkSizeInvalid,
		},
		{
			name:   "negative cache ttl",
			mutate: func(c *runtimeconfig.Config) { c.Cache.DefaultTTL = -1 },
			want:   runtimeconfig.ErrCacheTTLInvalid,
		},
		{
			name:   "previews without dimension",
			mutate: func(c *runtimeconfig.Config) { c.Upload.PreviewMaxDimension = 0 },
			want:   runtimeconfig.ErrPreviewDimensionInvalid,
		},
		{
			name: "metrics without namespace",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Metrics = true
				c.Upload.MetricsNamespace = ""
			},
			want: runtimeconfig.ErrMetricsNamespaceRequired,
		},
		{
			name:   "cover confirmation without confirmations",
			mutate: func(c *runtimeconfig.Config) { c.Review.RequireCoverConfirmation = true },
			want:   runtimeconfig.ErrCoverConfirmationsRequired,
		},
		{
			name: "logger without provider",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Logger = true
				c.Logging.Provider = ""
			},
			want: runtimeconfig.ErrLoggingProviderRequired,
		},
		{
			name: "unknown logging provider",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Logger = true
				c.Logging.Provider = "syslog"
			},
			want: runtimeconfig.ErrLoggingProviderUnknown,
		},
		{
			name: "bad logging level",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Logger = true
				c.Logging.Level = "loud"
			},
			want: runtimeconfig.ErrLoggingLevelInvalid,
		},
		{
			name: "bad gologger format",
			mutate: func(c *runtimeconfig.Config) {
				c.Features.Logger = true
				c.Logging.Provider = "gologger"
				c.Logging.Format = "xml"
			},
			want: runtimeconfig.ErrLoggingFormatInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestChunkSizeOrDefault(t *testing.T) {
	if got := (runtimeconfig.UploadConfig{}).ChunkSizeOrDefault(); got != runtimeconfig.DefaultChunkSize {
		t.Fatalf("expected fallback chunk size, got %d", got)
	}
	if got := (runtimeconfig.UploadConfig{ChunkSize: 4}).ChunkSizeOrDefault(); got != 4 {
		t.Fatalf("expected configured chunk size, got %d", got)
	}
}
