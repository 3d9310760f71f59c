// Package dbtest opens throwaway stores for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/mbolis/waterlily/config"
	"github.com/mbolis/waterlily/database"
)

// Open returns a migrated SQLite store in a temporary directory, closed when
// the test ends.
func Open(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(config.Config{
		DBDriver: "sqlite3",
		DBUrl:    filepath.Join(t.TempDir(), "test.sqlite"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
