package albums

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// Migrations discovers the embedded *.up.sql / *.down.sql pairs.
func Migrations() (*migrate.Migrations, error) {
	sub, err := fs.Sub(migrationsFS, "data/sql/migrations")
	if err != nil {
		return nil, err
	}
	migrations := migrate.NewMigrations()
	if err := migrations.Discover(sub); err != nil {
		return nil, fmt.Errorf("albums: discover migrations: %w", err)
	}
	return migrations, nil
}

func newMigrator(ctx context.Context, db *bun.DB) (*migrate.Migrator, error) {
	migrations, err := Migrations()
	if err != nil {
		return nil, err
	}
	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("albums: init migrations: %w", err)
	}
	return migrator, nil
}

// ApplyMigrations runs every pending up migration. Applied migrations are
// tracked in bun_migrations so repeated calls are no-ops.
func ApplyMigrations(ctx context.Context, db *bun.DB) error {
	migrator, err := newMigrator(ctx, db)
	if err != nil {
		return err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("albums: apply migrations: %w", err)
	}
	return nil
}

// RollbackMigrations reverts the most recently applied migration group.
func RollbackMigrations(ctx context.Context, db *bun.DB) error {
	migrator, err := newMigrator(ctx, db)
	if err != nil {
		return err
	}
	if _, err := migrator.Rollback(ctx); err != nil {
		return fmt.Errorf("albums: rollback migrations: %w", err)
	}
	return nil
}
