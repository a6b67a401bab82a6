package database

import (
	"fmt"
	"strings"

	"github.com/SlpAus/smartpanel-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide gorm handle, set by InitDB.
var DB *gorm.DB

// sqliteParams turns on foreign keys and makes writers wait instead of failing fast.
const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

// Open connects to the configured SQL database without touching the global handle.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite, "":
		dsn := cfg.DSN
		if !strings.Contains(dsn, "?") {
			dsn += "?" + sqliteParams
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver != config.DriverPostgres {
		// SQLite has no row locks; a single connection serializes writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// InitDB opens the database and publishes it as DB.
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	DB = db
	return db, nil
}
