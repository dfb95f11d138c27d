// Package dbtest opens file-backed SQLite stores with the registry schema for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"endpoint.GO/config"
	"endpoint.GO/model/schema"
)

// Open creates a fresh database in a temp dir. It returns the handle and the file path,
// so a second handle can be opened on the same file to act as another process.
func Open(t testing.TB) (*gorm.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "endpoint.db")
	db := OpenPath(t, path)
	if err := schema.Up(db); err != nil {
		t.Fatalf("schema.Up: %v", err)
	}
	return db, path
}

// OpenPath opens an existing database file without migrating it.
func OpenPath(t testing.TB, path string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(config.SQLiteDSN(path)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
