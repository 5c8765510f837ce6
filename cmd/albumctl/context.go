package main

import (
	"context"
	"strings"

	albums "github.com/goliatone/go-albums"
	"github.com/uptrace/bun"
)

type commandContext struct {
	configFlag *string

	module *albums.Module
	db     *bun.DB
	opts   []albums.Option
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureModule loads configuration and bootstraps the module once per invocation.
func (c *commandContext) ensureModule(ctx context.Context) (*albums.Module, error) {
	if c.module != nil {
		return c.module, nil
	}
	cfg, dsn, err := loadConfig(strings.TrimSpace(*c.configFlag))
	if err != nil {
		return nil, err
	}

	opts := append([]albums.Option{}, c.opts...)
	if strings.EqualFold(cfg.Storage.Provider, "bun") {
		db, err := openDB(cfg.Storage.Dialect, dsn)
		if err != nil {
			return nil, err
		}
		if err := albums.ApplyMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		c.db = db
		opts = append(opts, albums.WithBunDB(db))
	}

	module, err := albums.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := module.Bootstrap(ctx); err != nil {
		return nil, err
	}
	c.module = module
	return module, nil
}

func (c *commandContext) close() {
	if c.db != nil {
		_ = c.db.Close()
	}
}
