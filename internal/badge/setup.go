package badge

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Badge{}, &PanelistBadge{}); err != nil {
		return fmt.Errorf("migrate badge tables: %w", err)
	}
	return nil
}

// SeedDefaults inserts the catalogue, leaving existing names untouched.
func SeedDefaults(db *gorm.DB) error {
	seed := make([]Badge, len(Defaults))
	copy(seed, Defaults)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return fmt.Errorf("seed badges: %w", err)
	}
	return nil
}
