package metadata

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue returns "" for a missing key.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).Take(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue upserts key.
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}

const dateLayout = "2006-01-02"

// GetLastReminderRunDate returns "" when the scheduler never completed a pass.
func GetLastReminderRunDate(db *gorm.DB) (string, error) {
	return GetValue(db, LastReminderRunDateKey)
}

func SetLastReminderRunDate(db *gorm.DB, day time.Time) error {
	return SetValue(db, LastReminderRunDateKey, day.Format(dateLayout))
}

// GetLeaderboardWarmedAt returns the zero time when no rebuild was recorded.
func GetLeaderboardWarmedAt(db *gorm.DB) (time.Time, error) {
	v, err := GetValue(db, LeaderboardWarmedAtKey)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

func SetLeaderboardWarmedAt(db *gorm.DB, at time.Time) error {
	return SetValue(db, LeaderboardWarmedAtKey, at.UTC().Format(time.RFC3339))
}
