// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/SlpAus/smartpanel-backend/internal/platform/config"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"gorm.io/gorm"
)

// Open creates a fresh SQLite file under tb.TempDir and migrates models into it.
func Open(tb testing.TB, models ...interface{}) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.db")
	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: path})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			tb.Fatalf("migrate test db: %v", err)
		}
	}
	return db
}
