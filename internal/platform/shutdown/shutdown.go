package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/SlpAus/smartpanel-backend/pkg/lifecycle"
)

// Timeouts bounds each shutdown phase.
type Timeouts struct {
	HTTP     time.Duration
	Graceful time.Duration
	Forceful time.Duration
}

var DefaultTimeouts = Timeouts{
	HTTP:     15 * time.Second,
	Graceful: 30 * time.Second,
	Forceful: time.Second,
}

// Coordinator stops the HTTP server first, then asks background services
// to finish their work, and forces them out if they overrun.
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager
	Timeouts        Timeouts
	log             *logger.Logger
}

func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager, log *logger.Logger) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
		Timeouts:        DefaultTimeouts,
		log:             log,
	}
}

// ListenForSignalsAndShutdown blocks until SIGINT or SIGTERM, then shuts down.
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	c.log.Info("shutdown signal received", "signal", sig.String())
	c.Shutdown(server)
}

// Shutdown runs the two-phase stop.
func (c *Coordinator) Shutdown(server *http.Server) {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeouts.HTTP)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			c.log.Error("http server shutdown failed", "error", err)
		} else {
			c.log.Info("http server stopped")
		}
	}

	c.log.Info("stopping background services", "timeout", c.Timeouts.Graceful)
	c.GracefulManager.Shutdown()
	remaining := c.GracefulManager.WaitWithTimeout(c.Timeouts.Graceful)
	if len(remaining) == 0 {
		c.log.Info("background services stopped gracefully")
	} else {
		c.log.Warn("graceful stop timed out, forcing", "remaining", remaining, "timeout", c.Timeouts.Forceful)
		c.ForcefulManager.Shutdown()
		if left := c.ForcefulManager.WaitWithTimeout(c.Timeouts.Forceful); len(left) > 0 {
			c.log.Error("services did not stop", "remaining", left)
		}
	}
	c.log.Info("shutdown complete")
}
