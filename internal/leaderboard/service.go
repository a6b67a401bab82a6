package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/internal/scoring"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Aggregator builds read-only ranked views. SQL is the source of truth;
// the all-time board is served from the Redis cache when it is healthy.
type Aggregator struct {
	db    *gorm.DB
	cache *Cache
	group singleflight.Group
	log   *logger.Logger
	now   func() time.Time
}

func NewAggregator(db *gorm.DB, cache *Cache, log *logger.Logger) *Aggregator {
	return &Aggregator{db: db, cache: cache, log: log, now: time.Now}
}

// flightTimeout bounds a shared computation once it no longer follows
// the context of the caller that started it.
const flightTimeout = 10 * time.Second

// shared detaches ctx so one caller's cancellation does not fail every
// caller waiting on the same flight.
func shared(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
}

// AllTime returns the top panelists by score desc, id asc. Concurrent
// callers share one computation; the result must not be modified.
func (a *Aggregator) AllTime(ctx context.Context) ([]Entry, error) {
	v, err, _ := a.group.Do("all_time", func() (interface{}, error) {
		ctx, cancel := shared(ctx)
		defer cancel()
		if a.cache.Available() {
			entries, err := a.allTimeFromCache(ctx)
			if err == nil && entries != nil {
				return entries, nil
			}
			if err != nil {
				a.log.Warn("leaderboard cache read failed, using database", "error", err)
			}
		}
		return a.allTimeFromDB(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}

type panelistScore struct {
	ID       uint
	FullName string
	Score    int
}

func (a *Aggregator) allTimeFromDB(ctx context.Context) ([]Entry, error) {
	var rows []panelistScore
	err := a.db.WithContext(ctx).Table("panelists").
		Select("id", "full_name", "score").
		Order("score DESC, id ASC").
		Limit(AllTimeLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query all-time leaderboard: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for i, r := range rows {
		entries = append(entries, Entry{
			Position:   i + 1,
			PanelistID: r.ID,
			FullName:   r.FullName,
			Score:      r.Score,
			Rank:       scoring.RankFor(r.Score),
		})
	}
	return entries, nil
}

// allTimeFromCache returns nil without error when the cache holds fewer
// members than the board needs: panelists that never scored are only in SQL.
func (a *Aggregator) allTimeFromCache(ctx context.Context) ([]Entry, error) {
	top, err := a.cache.Top(ctx, AllTimeLimit)
	if err != nil {
		return nil, err
	}
	if len(top) < AllTimeLimit {
		return nil, nil
	}

	ids := make([]uint, len(top))
	for i, t := range top {
		ids[i] = t.PanelistID
	}
	var rows []panelistScore
	if err := a.db.WithContext(ctx).Table("panelists").Select("id", "full_name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load leaderboard names: %w", err)
	}
	names := make(map[uint]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.FullName
	}

	entries := make([]Entry, 0, len(top))
	for _, t := range top {
		name, ok := names[t.PanelistID]
		if !ok {
			// stale member, let SQL answer
			return nil, nil
		}
		entries = append(entries, Entry{
			Position:   len(entries) + 1,
			PanelistID: t.PanelistID,
			FullName:   name,
			Score:      t.Score,
			Rank:       scoring.RankFor(t.Score),
		})
	}
	return entries, nil
}

// Weekly sums history points since Monday 00:00 server local time.
// Panelists without entries this week are not listed.
func (a *Aggregator) Weekly(ctx context.Context) ([]WeeklyEntry, error) {
	since := StartOfWeek(a.now()).UTC()
	key := "weekly:" + since.Format(time.RFC3339)
	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		ctx, cancel := shared(ctx)
		defer cancel()
		var rows []struct {
			PanelistID uint
			FullName   string
			Points     int
		}
		err := a.db.WithContext(ctx).Table("score_history AS h").
			Select("h.panelist_id, p.full_name, SUM(h.points) AS points").
			Joins("JOIN panelists p ON p.id = h.panelist_id").
			Where("h.recorded_at >= ?", since).
			Group("h.panelist_id, p.full_name").
			Order("points DESC, h.panelist_id ASC").
			Limit(WeeklyLimit).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("query weekly leaderboard: %w", err)
		}
		entries := make([]WeeklyEntry, 0, len(rows))
		for i, r := range rows {
			entries = append(entries, WeeklyEntry{
				Position:   i + 1,
				PanelistID: r.PanelistID,
				FullName:   r.FullName,
				Points:     r.Points,
			})
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]WeeklyEntry), nil
}
