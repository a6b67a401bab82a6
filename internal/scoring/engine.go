package scoring

import (
	"context"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/badge"
	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/pkg/keylock"
	"gorm.io/gorm"
)

// BadgeEvaluator runs after every committed award.
type BadgeEvaluator interface {
	Evaluate(ctx context.Context, panelistID uint) ([]badge.Badge, error)
}

// ScoreListener mirrors committed scores into derived views such as the
// leaderboard cache. Failures there never undo an award.
type ScoreListener interface {
	ScoreChanged(ctx context.Context, panelistID uint, score int) error
}

type Options struct {
	MaxRetries  int
	RetryDelay  time.Duration
	LockTimeout time.Duration
	Now         func() time.Time
}

func (o *Options) normalize() {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 50 * time.Millisecond
	}
	if o.LockTimeout <= 0 {
		o.LockTimeout = 5 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Engine is the only writer of panelist score and rank.
type Engine struct {
	db        *gorm.DB
	locks     *keylock.Locker[uint]
	badges    BadgeEvaluator
	listeners []ScoreListener
	log       *logger.Logger
	opts      Options
}

func NewEngine(db *gorm.DB, badges BadgeEvaluator, log *logger.Logger, opts Options, listeners ...ScoreListener) *Engine {
	opts.normalize()
	return &Engine{
		db:        db,
		locks:     keylock.New[uint](),
		badges:    badges,
		listeners: listeners,
		log:       log,
		opts:      opts,
	}
}

type outcome struct {
	score   int
	awarded bool
}

// Award adds the points of action to the panelist and returns the new
// score. Unknown actions and rate-limited calls leave everything as is
// and return the current score without error.
func (e *Engine) Award(ctx context.Context, panelistID uint, action Action) (int, error) {
	points, known := action.Points()
	if !known {
		e.log.Debug("ignoring unknown scoring action", "panelist_id", panelistID, "action", action)
		return e.CurrentScore(ctx, panelistID)
	}

	lockCtx, cancel := context.WithTimeout(ctx, e.opts.LockTimeout)
	unlock, err := e.locks.Lock(lockCtx, panelistID)
	cancel()
	if err != nil {
		return 0, apperr.Concurrency(err, "timed out waiting for score lock of panelist %d", panelistID)
	}
	defer unlock()

	var res outcome
	for attempt := 0; ; attempt++ {
		res, err = e.apply(ctx, panelistID, action, points)
		if err == nil || !database.IsRetryableError(err) {
			break
		}
		if attempt >= e.opts.MaxRetries {
			return 0, apperr.Concurrency(err, "score update for panelist %d kept conflicting", panelistID)
		}
		e.log.Warn("retrying score update", "panelist_id", panelistID, "action", action, "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(e.opts.RetryDelay):
		}
	}
	if err != nil {
		return 0, err
	}

	if res.awarded {
		e.afterCommit(ctx, panelistID, res.score)
	}
	return res.score, nil
}

func (e *Engine) apply(ctx context.Context, panelistID uint, action Action, points int) (outcome, error) {
	var out outcome
	now := e.opts.Now().UTC()

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setLockTimeout(tx, e.opts.LockTimeout); err != nil {
			return err
		}
		row, err := lockScoreRow(tx, panelistID)
		if err != nil {
			return err
		}
		out.score = row.Score

		if limit, ok := LimitFor(action); ok {
			used, err := countAwardsSince(tx, panelistID, action, now.Add(-limit.Window))
			if err != nil {
				return err
			}
			if used >= int64(limit.Max) {
				return nil
			}
		}

		newScore := row.Score + points
		if err := saveScore(tx, panelistID, newScore, now); err != nil {
			return err
		}
		entry := HistoryEntry{PanelistID: panelistID, Action: action, Points: points, Timestamp: now}
		if err := appendHistory(tx, &entry); err != nil {
			return err
		}

		out = outcome{score: newScore, awarded: true}
		return nil
	})
	return out, err
}

func (e *Engine) afterCommit(ctx context.Context, panelistID uint, score int) {
	if e.badges != nil {
		if _, err := e.badges.Evaluate(ctx, panelistID); err != nil {
			e.log.Error("badge evaluation failed", "panelist_id", panelistID, "error", err)
		}
	}
	for _, l := range e.listeners {
		if err := l.ScoreChanged(ctx, panelistID, score); err != nil {
			e.log.Warn("score listener failed", "panelist_id", panelistID, "error", err)
		}
	}
}

// CurrentScore reads the committed score without locking.
func (e *Engine) CurrentScore(ctx context.Context, panelistID uint) (int, error) {
	return readScore(e.db.WithContext(ctx), panelistID)
}

// History returns the newest entries first.
func (e *Engine) History(ctx context.Context, panelistID uint, limit int) ([]HistoryEntry, error) {
	return listHistory(e.db.WithContext(ctx), panelistID, limit)
}
