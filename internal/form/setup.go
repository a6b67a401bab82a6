package form

import (
	"fmt"

	"gorm.io/gorm"
)

// Models lists the tables owned by this package, in migration order.
var Models = []interface{}{
	&Form{}, &Section{}, &Question{}, &QuestionOption{}, &ConditionalLogic{},
	&PanelistResponse{}, &ResponseSelection{},
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migrate form tables: %w", err)
	}
	return nil
}
