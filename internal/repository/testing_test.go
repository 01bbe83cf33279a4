package repository

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestDB opens a fresh sqlite database in a temp dir
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
