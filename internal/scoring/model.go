package scoring

import "time"

// HistoryEntry is the append-only audit log and the rate-limit counter source.
type HistoryEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PanelistID uint      `gorm:"not null;index:idx_history_window,priority:1" json:"panelistId"`
	Action     Action    `gorm:"size:50;not null;index:idx_history_window,priority:2" json:"action"`
	Points     int       `gorm:"not null" json:"points"`
	Timestamp  time.Time `gorm:"column:recorded_at;not null;index:idx_history_window,priority:3;index:idx_history_recorded_at" json:"timestamp"`
}

func (HistoryEntry) TableName() string {
	return "score_history"
}

// scoreRow is the engine's private view of the panelist row: only the
// columns it owns.
type scoreRow struct {
	ID        uint
	Score     int
	Rank      Rank
	UpdatedAt time.Time
}

func (scoreRow) TableName() string {
	return "panelists"
}
