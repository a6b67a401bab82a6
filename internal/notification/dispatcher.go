package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultCapacity = 1024
	pushTimeout     = 2 * time.Second
)

// Dispatcher buffers events in memory and moves them to the Redis queue
// from a single background goroutine.
type Dispatcher struct {
	rdb     redis.Cmdable
	log     *logger.Logger
	healthy func() bool

	events   chan Event
	closeMu  sync.Mutex
	isClosed bool
}

func NewDispatcher(rdb redis.Cmdable, log *logger.Logger, capacity int) *Dispatcher {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Dispatcher{
		rdb:     rdb,
		log:     log,
		healthy: database.IsRedisHealthy,
		events:  make(chan Event, capacity),
	}
}

// Publish never blocks: when the buffer is full or the dispatcher is
// shutting down the event is dropped with a warning.
func (d *Dispatcher) Publish(ev Event) {
	d.closeMu.Lock()
	defer d.closeMu.Unlock()

	if d.isClosed {
		d.log.Warn("notification dropped, dispatcher stopped", "kind", ev.Kind, "id", ev.ID)
		return
	}
	select {
	case d.events <- ev:
	default:
		d.log.Warn("notification dropped, buffer full", "kind", ev.Kind, "id", ev.ID)
	}
}

// Run delivers events until the graceful handle fires, then drains what
// is left unless the forceful handle interrupts.
func (d *Dispatcher) Run(graceful, forceful *lifecycle.Handle) {
	defer graceful.Close()
	defer forceful.Close()
	d.log.Info("notification dispatcher started")

	for {
		select {
		case <-graceful.Done():
			d.drain(forceful)
			d.log.Info("notification dispatcher stopped")
			return
		case ev := <-d.events:
			d.deliver(forceful.Ctx(), ev)
		}
	}
}

func (d *Dispatcher) drain(forceful *lifecycle.Handle) {
	d.closeMu.Lock()
	d.isClosed = true
	close(d.events)
	d.closeMu.Unlock()

	for ev := range d.events {
		select {
		case <-forceful.Done():
			d.log.Warn("notification drain interrupted", "pending", len(d.events)+1)
			return
		default:
		}
		d.deliver(forceful.Ctx(), ev)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	if !d.healthy() {
		d.log.Warn("notification dropped, redis unavailable", "kind", ev.Kind, "id", ev.ID)
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		d.log.Error("notification encode failed", "kind", ev.Kind, "error", err)
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	if err := d.rdb.LPush(pushCtx, QueueKey, body).Err(); err != nil {
		d.log.Warn("notification push failed", "kind", ev.Kind, "id", ev.ID, "error", err)
	}
}
