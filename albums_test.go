package albums_test

import (
	"context"
	"testing"

	albums "github.com/goliatone/go-albums"
	"github.com/goliatone/go-albums/internal/images"
	"github.com/goliatone/go-albums/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestModuleEndToEndInMemory(t *testing.T) {
	ctx := context.Background()
	module, err := albums.New(albums.DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := module.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	event, err := module.Store().CreateEvent(ctx, uuid.New(), "Wedding")
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	image, err := module.Store().AddImage(ctx, images.NewImage{EventID: event.ID, FileName: "a.jpg", URL: "https://cdn.example.com/a.jpg"})
	if err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}

	view := module.Gallery(event.ID)
	if err := view.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	result, err := module.Bulk().ApproveAndPublish(ctx, event.ID, []uuid.UUID{image.ID})
	if err != nil {
		t.Fatalf("ApproveAndPublish() error = %v", err)
	}
	if !result.Published {
		t.Fatalf("expected publish, got %+v", result)
	}

	state, err := module.Delivery().State(ctx, event.ID)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if state.Publishable {
		t.Fatalf("expected a published event to no longer be publishable")
	}
}

func TestApplyMigrationsCreatesSchema(t *testing.T) {
	ctx := context.Background()
	sqldb, err := testsupport.NewSQLiteMemoryDB("albums_migrations")
	if err != nil {
		t.Fatalf("NewSQLiteMemoryDB() error = %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	if err := albums.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	if err := albums.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("second ApplyMigrations() error = %v", err)
	}

	cfg := albums.DefaultConfig()
	cfg.Storage.Provider = "bun"
	module, err := albums.New(cfg, albums.WithBunDB(db))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := module.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	cat, err := module.Catalog(ctx)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if cat.Published().Step != 4 {
		t.Fatalf("expected PUBLISHED at step 4, got %d", cat.Published().Step)
	}
}

func TestRollbackMigrationsDropsSchema(t *testing.T) {
	ctx := context.Background()
	sqldb, err := testsupport.NewSQLiteMemoryDB("albums_rollback")
	if err != nil {
		t.Fatalf("NewSQLiteMemoryDB() error = %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	migrations, err := albums.Migrations()
	if err != nil {
		t.Fatalf("Migrations() error = %v", err)
	}
	if got := len(migrations.Sorted()); got != 1 {
		t.Fatalf("expected 1 embedded migration, got %d", got)
	}

	if err := albums.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	if !tableExists(t, db, "event_images") {
		t.Fatalf("expected event_images after migrate")
	}
	if err := albums.RollbackMigrations(ctx, db); err != nil {
		t.Fatalf("RollbackMigrations() error = %v", err)
	}
	if tableExists(t, db, "event_images") {
		t.Fatalf("expected event_images to be dropped after rollback")
	}
}

func tableExists(t *testing.T, db *bun.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRowContext(context.Background(),
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count > 0
}
