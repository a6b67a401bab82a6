package campaign

import (
	"fmt"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Campaign{}, &Application{}); err != nil {
		return fmt.Errorf("migrate campaign tables: %w", err)
	}
	return nil
}
