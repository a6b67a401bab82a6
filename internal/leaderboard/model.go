package leaderboard

import (
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/scoring"
)

const (
	AllTimeLimit = 10
	WeeklyLimit  = 5
)

// Entry is one row of the all-time board.
type Entry struct {
	Position   int          `json:"position"`
	PanelistID uint         `json:"panelistId"`
	FullName   string       `json:"fullName"`
	Score      int          `json:"score"`
	Rank       scoring.Rank `json:"rank"`
}

// WeeklyEntry sums the points a panelist earned since Monday.
type WeeklyEntry struct {
	Position   int    `json:"position"`
	PanelistID uint   `json:"panelistId"`
	FullName   string `json:"fullName"`
	Points     int    `json:"points"`
}

// StartOfWeek returns Monday 00:00 of t's week in t's location.
func StartOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	sinceMonday := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -sinceMonday)
}
