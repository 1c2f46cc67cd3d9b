// Package scheduler drives the phase machine on a fixed interval so the
// contest advances even when no platform events arrive.
package scheduler

import (
	"context"
	"time"

	"github.com/ateliervote/concours/internal/logger"
)

// Ticker is the slice of the engine the scheduler needs.
type Ticker interface {
	Tick(ctx context.Context) error
}

// Scheduler calls the engine's Tick on a fixed interval.
type Scheduler struct {
	log      logger.Logger
	engine   Ticker
	interval time.Duration
}

// New creates a scheduler; interval must be positive.
func New(log logger.Logger, engine Ticker, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{log: log, engine: engine, interval: interval}
}

// Run ticks until the context is cancelled. It ticks once immediately so a
// freshly recovered contest catches up without waiting a full interval.
func (s *Scheduler) Run(ctx context.Context) {
	if err := s.engine.Tick(ctx); err != nil {
		s.log.Error("Phase tick failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			if err := s.engine.Tick(ctx); err != nil {
				s.log.Error("Phase tick failed", "error", err)
			}
		}
	}
}
