// Package worker contains background jobs that run alongside the HTTP
// server.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-booking/internal/pkg/logger"
	"github.com/iliyamo/cinema-ticket-booking/internal/pkg/metrics"
)

// HoldSweeper releases expired hold sets and fails their stale
// payments. Implemented by booking.HoldManager; the reaper reaches
// seat state only through this one operation, never by mutating hold
// rows directly.
type HoldSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// ExpiryReaper periodically reclaims seats from abandoned checkouts.
// Requests never depend on it for correctness: hold validity is
// re-computed from the clock at the moment of use.
type ExpiryReaper struct {
	sweeper  HoldSweeper
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewExpiryReaper creates a reaper sweeping at the given interval.
func NewExpiryReaper(sweeper HoldSweeper, interval time.Duration) *ExpiryReaper {
	return &ExpiryReaper{
		sweeper:  sweeper,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called. Call it on its own goroutine.
func (r *ExpiryReaper) Start(ctx context.Context) {
	logger.Info("expiry reaper started", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("expiry reaper stopped (context cancelled)")
			return
		case <-r.stopCh:
			logger.Info("expiry reaper stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// Stop shuts the reaper down and waits for the loop to exit.
func (r *ExpiryReaper) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *ExpiryReaper) sweep(ctx context.Context) {
	released, err := r.sweeper.SweepExpired(ctx)
	if err != nil {
		logger.Error("expired hold sweep failed", zap.Error(err))
		return
	}
	if released > 0 {
		metrics.ReapedHoldSets(released)
		logger.Info("released expired hold sets", zap.Int("count", released))
	} else {
		logger.Debug("no expired holds")
	}
}
