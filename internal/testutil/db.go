// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/sportfed/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB creates a migrated in-memory SQLite database.
// The pool is held to one connection, since each in-memory connection is its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return open(t, ":memory:", 1)
}

// NewFileTestDB creates a migrated SQLite database file that several connections can share
func NewFileTestDB(t *testing.T, connections int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return open(t, fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path), connections)
}

func open(t *testing.T, dsn string, connections int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(connections)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}
