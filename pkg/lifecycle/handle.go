package lifecycle

import (
	"context"
	"time"
)

// Handle is given to one background service. The service selects on
// Done to learn about shutdown and must call Close (usually deferred)
// once it has fully stopped.
type Handle struct {
	ctx   context.Context
	Close func()
}

// Ctx returns the context cancelled when the owning Manager shuts down.
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done is closed when the owning Manager shuts down.
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err reports why Done was closed.
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep waits for duration, returning early with the context error on shutdown.
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.Err()
	case <-timer.C:
		return nil
	}
}
