package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteRegistry opens a SQLite registry and creates its schema.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteRegistry(ctx context.Context, dbPath string) (*Registry, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	r := New(db, SQLite)
	if err := r.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}
