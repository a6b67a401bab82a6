package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/database/dbtest"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/platform/metadata"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"gorm.io/gorm"
)

type panelist struct {
	ID       uint
	FullName string
	Score    int `gorm:"not null;default:0"`
}

func (panelist) TableName() string { return "panelists" }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, &panelist{}, &scoring.HistoryEntry{}, &metadata.Metadata{})
}

func addPanelists(t *testing.T, db *gorm.DB, scores ...int) {
	t.Helper()
	for i, s := range scores {
		p := panelist{FullName: fmt.Sprintf("Panelist %d", i+1), Score: s}
		if err := db.Create(&p).Error; err != nil {
			t.Fatal(err)
		}
	}
}

func addHistory(t *testing.T, db *gorm.DB, panelistID uint, points int, at time.Time) {
	t.Helper()
	e := scoring.HistoryEntry{PanelistID: panelistID, Action: scoring.ActionSubmitResponse, Points: points, Timestamp: at.UTC()}
	if err := db.Create(&e).Error; err != nil {
		t.Fatal(err)
	}
}

func TestStartOfWeek(t *testing.T) {
	zone := time.FixedZone("panel", 2*3600)
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, zone)
	cases := []time.Time{
		monday,
		time.Date(2026, 10, 12, 23, 59, 0, 0, zone),
		time.Date(2026, 10, 16, 12, 0, 0, 0, zone),
		time.Date(2026, 10, 18, 23, 59, 59, 0, zone),
	}
	for _, c := range cases {
		if got := StartOfWeek(c); !got.Equal(monday) {
			t.Errorf("StartOfWeek(%v) = %v, want %v", c, got, monday)
		}
	}
	if got := StartOfWeek(time.Date(2026, 10, 19, 0, 0, 1, 0, zone)); !got.Equal(monday.AddDate(0, 0, 7)) {
		t.Errorf("next Monday rolled back to %v", got)
	}
}

func TestAllTimeOrdersByScoreThenID(t *testing.T) {
	db := openDB(t)
	// ids 1..12
	addPanelists(t, db, 50, 120, 50, 0, 300, 10, 120, 5, 5, 1000, 75, 2)
	agg := NewAggregator(db, nil, logger.Nop())

	got, err := agg.AllTime(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []uint{10, 5, 2, 7, 11, 1, 3, 6, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.PanelistID != want[i] || e.Position != i+1 {
			t.Fatalf("position %d = panelist %d, want %d", i+1, e.PanelistID, want[i])
		}
	}
	if got[0].Rank != scoring.RankElite || got[1].Rank != scoring.RankGold {
		t.Fatalf("ranks = %s, %s", got[0].Rank, got[1].Rank)
	}
}

func TestWeeklyWindowStartsMonday(t *testing.T) {
	db := openDB(t)
	addPanelists(t, db, 0, 0, 0, 0)
	zone := time.FixedZone("panel", -5*3600)
	friday := time.Date(2026, 10, 16, 12, 0, 0, 0, zone)

	addHistory(t, db, 1, 20, friday.AddDate(0, 0, -2))
	addHistory(t, db, 1, 100, friday.AddDate(0, 0, -8))
	addHistory(t, db, 2, 50, time.Date(2026, 10, 12, 0, 30, 0, 0, zone))
	addHistory(t, db, 3, 500, time.Date(2026, 10, 11, 23, 30, 0, 0, zone))
	addHistory(t, db, 4, 10, friday.Add(-time.Hour))
	addHistory(t, db, 4, 10, friday.Add(-2*time.Hour))

	agg := NewAggregator(db, nil, logger.Nop())
	agg.now = func() time.Time { return friday }

	got, err := agg.Weekly(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []WeeklyEntry{
		{Position: 1, PanelistID: 2, FullName: "Panelist 2", Points: 50},
		{Position: 2, PanelistID: 1, FullName: "Panelist 1", Points: 20},
		{Position: 3, PanelistID: 4, FullName: "Panelist 4", Points: 20},
	}
	if len(got) != len(want) {
		t.Fatalf("weekly = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("weekly[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWeeklyKeepsTopFive(t *testing.T) {
	db := openDB(t)
	addPanelists(t, db, 0, 0, 0, 0, 0, 0, 0)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	for id := uint(1); id <= 7; id++ {
		addHistory(t, db, id, int(id)*10, now.Add(-time.Hour))
	}
	agg := NewAggregator(db, nil, logger.Nop())
	agg.now = func() time.Time { return now }

	got, err := agg.Weekly(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != WeeklyLimit || got[0].PanelistID != 7 || got[4].PanelistID != 3 {
		t.Fatalf("weekly = %+v", got)
	}
}

func TestWeeklyEmpty(t *testing.T) {
	db := openDB(t)
	addPanelists(t, db, 300)
	got, err := NewAggregator(db, nil, logger.Nop()).Weekly(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("weekly = %+v, want empty", got)
	}
}

func TestSharedReadsOutliveCancelledCaller(t *testing.T) {
	db := openDB(t)
	addPanelists(t, db, 40, 70)
	addHistory(t, db, 2, 20, time.Now())
	agg := NewAggregator(db, nil, logger.Nop())

	// the caller that starts a flight may go away; the computation it
	// shares with others must still finish
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	board, err := agg.AllTime(ctx)
	if err != nil || len(board) != 2 || board[0].PanelistID != 2 {
		t.Fatalf("AllTime = %+v, %v", board, err)
	}
	weekly, err := agg.Weekly(ctx)
	if err != nil || len(weekly) != 1 || weekly[0].Points != 20 {
		t.Fatalf("Weekly = %+v, %v", weekly, err)
	}
}
