package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB returns a migrated database backed by a file in the test's
// temporary directory, so every pooled connection sees the same data.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "opis-test.sqlite3")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := EnsureSchema(conn); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return conn
}
