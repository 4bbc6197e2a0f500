// Package storagetest provides an in-memory SQLite database with the site
// schema applied, for use in tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/etm-murmansk/site/pkg/storage"
	_ "github.com/mattn/go-sqlite3"
)

// NewDB opens a migrated in-memory SQLite database that is closed when the
// test ends.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := storage.Migrate(context.Background(), db, "sqlite3"); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
