package health

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultInterval = 5 * time.Second
	infoTimeout     = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// RebuildFunc repopulates every Redis-backed cache from SQL.
type RebuildFunc func(ctx context.Context) error

type infoClient interface {
	Info(ctx context.Context, section ...string) *redis.StringCmd
}

// Checker watches the Redis run_id. A changed id means the instance
// restarted and lost its keys, so the caches are rebuilt before Redis is
// trusted again.
type Checker struct {
	rdb      infoClient
	rebuild  RebuildFunc
	log      *logger.Logger
	interval time.Duration
}

func NewChecker(rdb infoClient, rebuild RebuildFunc, log *logger.Logger, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	c := &Checker{rdb: rdb, rebuild: rebuild, log: log.With("component", "redis_health"), interval: interval}
	database.OnStatusChange(c.statusChanged)
	return c
}

// statusChanged fires once per flip of the shared health flag.
func (c *Checker) statusChanged(healthy bool) {
	if healthy {
		c.log.Info("redis health changed, serving caches from redis", "healthy", true)
		return
	}
	c.log.Warn("redis health changed, serving reads from database", "healthy", false)
}

func parseRunID(info string) (string, error) {
	m := runIDPattern.FindStringSubmatch(info)
	if len(m) < 2 {
		return "", errors.New("run_id missing from redis INFO")
	}
	return m[1], nil
}

func (c *Checker) runID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()
	info, err := c.rdb.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	return parseRunID(info)
}

// InitializeRunID records the run_id the startup warmup is built against.
func (c *Checker) InitializeRunID(ctx context.Context) error {
	id, err := c.runID(ctx)
	if err != nil {
		return err
	}
	database.SetInitialRunID(id)
	c.log.Info("redis run id recorded", "run_id", id)
	return nil
}

// rebuildAtomically only succeeds when Redis did not restart again
// while the rebuild ran.
func (c *Checker) rebuildAtomically(ctx context.Context, before string) bool {
	c.log.Warn("redis restart detected, rebuilding caches", "run_id", before)
	if err := c.rebuild(ctx); err != nil {
		c.log.Error("cache rebuild failed", "error", err)
		return false
	}
	after, err := c.runID(ctx)
	if err != nil {
		c.log.Error("redis unreachable after rebuild", "error", err)
		return false
	}
	if after != before {
		c.log.Error("redis restarted during rebuild", "before", before, "after", after)
		return false
	}
	c.log.Info("cache rebuild verified")
	return true
}

// PerformCheck runs one probe and updates the shared health flag.
func (c *Checker) PerformCheck(ctx context.Context) {
	current, err := c.runID(ctx)
	if err != nil {
		if database.IsRedisHealthy() {
			c.log.Warn("redis unreachable, falling back to database", "error", err)
		}
		database.UpdateStatus(false, "")
		return
	}

	if current != database.GetLastKnownRunID() {
		if !c.rebuildAtomically(ctx, current) {
			database.UpdateStatus(false, "")
			return
		}
	}
	database.UpdateStatus(true, current)
}

// Run probes on every interval until the handle is cancelled.
func (c *Checker) Run(handle *lifecycle.Handle) {
	defer handle.Close()
	c.log.Info("redis health checker started", "interval", c.interval)
	for {
		if err := handle.Sleep(c.interval); err != nil {
			c.log.Info("redis health checker stopped")
			return
		}
		c.PerformCheck(handle.Ctx())
	}
}
