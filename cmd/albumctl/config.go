package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	albums "github.com/goliatone/go-albums"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type fileConfig struct {
	TenantID string `mapstructure:"tenant_id"`
	Storage  struct {
		Provider string `mapstructure:"provider"`
		Dialect  string `mapstructure:"dialect"`
		DSN      string `mapstructure:"dsn"`
	} `mapstructure:"storage"`
	Cache struct {
		Enabled bool          `mapstructure:"enabled"`
		TTL     time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`
	Upload struct {
		ChunkSize           int           `mapstructure:"chunk_size"`
		RequestTimeout      time.Duration `mapstructure:"request_timeout"`
		PreviewMaxDimension int           `mapstructure:"preview_max_dimension"`
		MetricsNamespace    string        `mapstructure:"metrics_namespace"`
	} `mapstructure:"upload"`
	Review struct {
		RequireCoverConfirmation bool `mapstructure:"require_cover_confirmation"`
	} `mapstructure:"review"`
	Features struct {
		Logger        bool `mapstructure:"logger"`
		Metrics       bool `mapstructure:"metrics"`
		Previews      bool `mapstructure:"previews"`
		Confirmations bool `mapstructure:"confirmations"`
	} `mapstructure:"features"`
	Logging struct {
		Provider string `mapstructure:"provider"`
		Level    string `mapstructure:"level"`
		Format   string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// loadConfig reads defaults, then the optional config file, then ALBUMS_* env overrides.
func loadConfig(path string) (albums.Config, string, error) {
	defaults := albums.DefaultConfig()
	v := viper.New()

	v.SetDefault("tenant_id", defaults.TenantID)
	v.SetDefault("storage.provider", defaults.Storage.Provider)
	v.SetDefault("storage.dialect", defaults.Storage.Dialect)
	v.SetDefault("storage.dsn", "file:albums.db?cache=shared&_fk=1")
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.ttl", defaults.Cache.DefaultTTL)
	v.SetDefault("upload.chunk_size", defaults.Upload.ChunkSize)
	v.SetDefault("upload.request_timeout", defaults.Upload.RequestTimeout)
	v.SetDefault("upload.preview_max_dimension", defaults.Upload.PreviewMaxDimension)
	v.SetDefault("upload.metrics_namespace", defaults.Upload.MetricsNamespace)
	v.SetDefault("features.previews", defaults.Features.Previews)
	v.SetDefault("logging.provider", defaults.Logging.Provider)
	v.SetDefault("logging.level", defaults.Logging.Level)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return albums.Config{}, "", fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("ALBUMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return albums.Config{}, "", fmt.Errorf("unmarshal config: %w", err)
	}

	cfg := defaults
	cfg.TenantID = fc.TenantID
	cfg.Storage.Provider = fc.Storage.Provider
	cfg.Storage.Dialect = fc.Storage.Dialect
	cfg.Cache.Enabled = fc.Cache.Enabled
	cfg.Cache.DefaultTTL = fc.Cache.TTL
	cfg.Upload.ChunkSize = fc.Upload.ChunkSize
	cfg.Upload.RequestTimeout = fc.Upload.RequestTimeout
	cfg.Upload.PreviewMaxDimension = fc.Upload.PreviewMaxDimension
	cfg.Upload.MetricsNamespace = fc.Upload.MetricsNamespace
	cfg.Review.RequireCoverConfirmation = fc.Review.RequireCoverConfirmation
	cfg.Features.Logger = fc.Features.Logger
	cfg.Features.Metrics = fc.Features.Metrics
	cfg.Features.Previews = fc.Features.Previews
	cfg.Features.Confirmations = fc.Features.Confirmations
	cfg.Logging.Provider = fc.Logging.Provider
	cfg.Logging.Level = fc.Logging.Level
	cfg.Logging.Format = fc.Logging.Format

	if err := cfg.Validate(); err != nil {
		return albums.Config{}, "", err
	}
	return cfg, fc.Storage.DSN, nil
}

func openDB(dialect, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}
