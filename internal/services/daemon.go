package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/logging"
	"github.com/renato0307/chordd/internal/ports"
)

// ErrSourceClosed is returned by Run when the event source stops delivering
var ErrSourceClosed = errors.New("event source closed")

// EventHandler consumes key events and collects finished children
type EventHandler interface {
	HandleEvent(ev domain.KeyEvent)
	Sweep()
}

// Daemon is the event loop: it feeds key events to the dispatcher one at a time
type Daemon struct {
	handler       EventHandler
	source        ports.EventSource
	sweepInterval time.Duration
}

// NewDaemon creates a Daemon. A zero sweepInterval disables the periodic sweep.
func NewDaemon(source ports.EventSource, handler EventHandler, sweepInterval time.Duration) *Daemon {
	return &Daemon{
		handler:       handler,
		source:        source,
		sweepInterval: sweepInterval,
	}
}

// Run processes events until ctx is cancelled or the source fails.
// Cancellation is a clean stop and returns nil.
func (d *Daemon) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if d.sweepInterval > 0 {
		ticker := time.NewTicker(d.sweepInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer d.handler.Sweep()

	events := d.source.Events()
	errs := d.source.Errors()

	logging.Logger.Info("Daemon started", "sweep_interval", d.sweepInterval)
	for {
		select {
		case <-ctx.Done():
			logging.Logger.Info("Daemon stopping", "reason", context.Cause(ctx))
			return nil

		case ev, ok := <-events:
			if !ok {
				return ErrSourceClosed
			}
			d.handler.HandleEvent(ev)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if IsTransient(err) {
				logging.Logger.Warn("Transient event source error", "error", err)
				continue
			}
			return fmt.Errorf("event source failed: %w", err)

		case <-tick:
			d.handler.Sweep()
		}
	}
}

// IsTransient reports whether err marks itself as retryable
func IsTransient(err error) bool {
	var t ports.TransientError
	return errors.As(err, &t) && t.Transient()
}
