package scoring

import (
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockTimeoutStatement bounds row-lock waits on drivers that support it.
// SQLite serializes writers on the connection pool instead.
func lockTimeoutStatement(dialect string, d time.Duration) (string, bool) {
	if dialect != "postgres" || d <= 0 {
		return "", false
	}
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms), true
}

// setLockTimeout must run inside the transaction it applies to.
func setLockTimeout(tx *gorm.DB, d time.Duration) error {
	stmt, ok := lockTimeoutStatement(tx.Dialector.Name(), d)
	if !ok {
		return nil
	}
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}
	return nil
}

// lockScoreRow takes the panelist row FOR UPDATE.
func lockScoreRow(tx *gorm.DB, panelistID uint) (scoreRow, error) {
	var row scoreRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "score", "rank").
		Where("id = ?", panelistID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, apperr.NotFound("panelist %d not found", panelistID)
		}
		return row, fmt.Errorf("lock panelist %d: %w", panelistID, err)
	}
	return row, nil
}

func countAwardsSince(tx *gorm.DB, panelistID uint, action Action, since time.Time) (int64, error) {
	var used int64
	err := tx.Model(&HistoryEntry{}).
		Where("panelist_id = ? AND action = ? AND recorded_at >= ?", panelistID, string(action), since).
		Count(&used).Error
	if err != nil {
		return 0, fmt.Errorf("count %s awards: %w", action, err)
	}
	return used, nil
}

func saveScore(tx *gorm.DB, panelistID uint, score int, at time.Time) error {
	err := tx.Model(&scoreRow{}).Where("id = ?", panelistID).Updates(map[string]interface{}{
		"score":      score,
		"rank":       RankFor(score),
		"updated_at": at,
	}).Error
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}

func appendHistory(tx *gorm.DB, entry *HistoryEntry) error {
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func readScore(db *gorm.DB, panelistID uint) (int, error) {
	var row scoreRow
	err := db.Select("id", "score").Where("id = ?", panelistID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("panelist %d not found", panelistID)
		}
		return 0, fmt.Errorf("read score of panelist %d: %w", panelistID, err)
	}
	return row.Score, nil
}

// listHistory returns the newest entries first; limit <= 0 means all.
func listHistory(db *gorm.DB, panelistID uint, limit int) ([]HistoryEntry, error) {
	q := db.Where("panelist_id = ?", panelistID).Order("recorded_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []HistoryEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load history of panelist %d: %w", panelistID, err)
	}
	return entries, nil
}
