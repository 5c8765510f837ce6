package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteMemoryDB opens a shared in-memory sqlite database. A name keeps
// databases from different tests apart.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sql.Open("sqlite3", "file::memory:?cache=shared")
	}
	return sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name))
}

// NewBunDB opens a named in-memory sqlite database through bun and creates a
// table for every supplied model.
func NewBunDB(ctx context.Context, name string, models ...any) (*bun.DB, error) {
	sqldb, err := NewSQLiteMemoryDB(name)
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return db, nil
}
