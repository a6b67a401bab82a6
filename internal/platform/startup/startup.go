package startup

import (
	"context"
	"fmt"

	"github.com/SlpAus/smartpanel-backend/internal/account"
	"github.com/SlpAus/smartpanel-backend/internal/badge"
	"github.com/SlpAus/smartpanel-backend/internal/campaign"
	"github.com/SlpAus/smartpanel-backend/internal/form"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/metadata"
	"github.com/SlpAus/smartpanel-backend/internal/profile"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"gorm.io/gorm"
)

// CacheRebuilder repopulates the Redis leaderboard from SQL.
type CacheRebuilder interface {
	ReconcileOnce(ctx context.Context) (int, error)
}

var migrations = []struct {
	name string
	run  func(*gorm.DB) error
}{
	{"metadata", metadata.Migrate},
	{"account", account.Migrate},
	{"profile", profile.Migrate},
	{"scoring", scoring.Migrate},
	{"badge", badge.Migrate},
	{"campaign", campaign.Migrate},
	{"form", form.Migrate},
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	for _, m := range migrations {
		if err := m.run(db); err != nil {
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}
	return nil
}

// Seed inserts the reference data. Safe to run on every start.
func Seed(db *gorm.DB) error {
	if err := badge.SeedDefaults(db); err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}
	if err := account.SeedInterests(db); err != nil {
		return fmt.Errorf("seed interests: %w", err)
	}
	return nil
}

// InitializeApplication prepares the database and the caches before the
// server accepts traffic.
func InitializeApplication(ctx context.Context, db *gorm.DB, cache CacheRebuilder, log *logger.Logger) error {
	log.Info("initializing application")
	if err := Migrate(db); err != nil {
		return err
	}
	if err := Seed(db); err != nil {
		return err
	}
	if err := RebuildCache(ctx, cache, log); err != nil {
		return err
	}
	log.Info("application initialized")
	return nil
}

// RebuildCache is also the hot-rebuild hook of the Redis health checker.
func RebuildCache(ctx context.Context, cache CacheRebuilder, log *logger.Logger) error {
	n, err := cache.ReconcileOnce(ctx)
	if err != nil {
		return fmt.Errorf("warm leaderboard cache: %w", err)
	}
	log.Info("leaderboard cache warmed", "members", n)
	return nil
}
