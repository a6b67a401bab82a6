package profile

import (
	"fmt"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Panelist{}, &Announcer{}); err != nil {
		return fmt.Errorf("migrate profile tables: %w", err)
	}
	return nil
}
