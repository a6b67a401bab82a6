package account

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Account{}, &Interest{}); err != nil {
		return fmt.Errorf("migrate account tables: %w", err)
	}
	return nil
}

func SeedInterests(db *gorm.DB) error {
	rows := make([]Interest, 0, len(DefaultInterests))
	for _, name := range DefaultInterests {
		rows = append(rows, Interest{Name: name})
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("seed interests: %w", err)
	}
	return nil
}
