// Package testutil opens throwaway sqlite databases for package tests.
package testutil

import (
	"testing"

	"gamestore/backend/internal/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB returns a migrated in-memory sqlite database private to the test.
// The pool is capped at one connection so every query sees the same memory
// database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
