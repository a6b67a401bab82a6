package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/metadata"
	"github.com/SlpAus/smartpanel-backend/pkg/lifecycle"
	"gorm.io/gorm"
)

const DefaultReconcileInterval = 10 * time.Minute

// Reconciler periodically rebuilds the cache from SQL so that a failed
// listener write or a lost Redis key heals on its own.
type Reconciler struct {
	db       *gorm.DB
	cache    *Cache
	interval time.Duration
	mu       sync.Mutex
}

func NewReconciler(db *gorm.DB, cache *Cache, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}
	return &Reconciler{db: db, cache: cache, interval: interval}
}

// Run loops until the handle is cancelled.
func (r *Reconciler) Run(handle *lifecycle.Handle) {
	defer handle.Close()
	log := r.cache.log.With("component", "leaderboard_reconciler")
	log.Info("leaderboard reconciler started", "interval", r.interval)

	for {
		if err := handle.Sleep(r.interval); err != nil {
			log.Info("leaderboard reconciler stopped")
			return
		}
		if !r.cache.Available() {
			log.Debug("redis unavailable, skipping reconcile")
			continue
		}
		n, err := r.ReconcileOnce(handle.Ctx())
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				log.Error("leaderboard reconcile failed", "error", err)
			}
			continue
		}
		log.Debug("leaderboard reconciled", "members", n)
	}
}

// ReconcileOnce rebuilds the sorted set and checkpoints the time.
func (r *Reconciler) ReconcileOnce(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.cache.Warmup(ctx, r.db)
	if err != nil {
		return 0, err
	}
	if err := metadata.SetLeaderboardWarmedAt(r.db.WithContext(ctx), time.Now()); err != nil {
		return n, fmt.Errorf("record leaderboard rebuild: %w", err)
	}
	return n, nil
}
