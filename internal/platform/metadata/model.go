package metadata

import "time"

// Metadata is a small key/value table for process checkpoints.
type Metadata struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)"`
	Value     string    `gorm:"type:varchar(255)"`
	UpdatedAt time.Time
}

func (Metadata) TableName() string {
	return "metadata"
}
