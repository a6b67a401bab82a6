package scoring

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates score_history. The panelists table belongs to the profile package.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&HistoryEntry{}); err != nil {
		return fmt.Errorf("migrate score history: %w", err)
	}
	return nil
}
