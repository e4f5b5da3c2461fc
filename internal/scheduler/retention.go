// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/water-risk-service/internal/observability"
)

// Pruner deletes reports dated before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// Counter reports how many reports remain after a sweep. Optional.
type Counter interface {
	Len() int
}

// RetentionSweep periodically removes reports older than the retention window.
type RetentionSweep struct {
	scheduler *gocron.Scheduler
	pruner    Pruner
	retention time.Duration
	interval  time.Duration
	timeout   time.Duration
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewRetentionSweep creates a sweep that runs every interval.
func NewRetentionSweep(pruner Pruner, retention, interval time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *RetentionSweep {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RetentionSweep{
		scheduler: gocron.NewScheduler(time.UTC),
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		timeout:   30 * time.Second,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start schedules the sweep and starts the scheduler. The first sweep runs
// immediately.
func (s *RetentionSweep) Start() error {
	if s.retention <= 0 {
		s.logger.Info("report retention disabled")
		return nil
	}
	if s.interval <= 0 {
		return fmt.Errorf("retention sweep interval must be positive, got %s", s.interval)
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("retention sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule retention sweep: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("retention sweep scheduled", "retention", s.retention, "interval", s.interval)
	return nil
}

// RunOnce prunes reports older than the retention window.
func (s *RetentionSweep) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.retention)
	removed, err := s.pruner.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune reports: %w", err)
	}

	s.metrics.ReportsPruned.Add(float64(removed))
	if c, ok := s.pruner.(Counter); ok {
		s.metrics.StoredReports.Set(float64(c.Len()))
	}
	if removed > 0 {
		s.logger.Info("pruned expired reports", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// Stop stops the scheduler.
func (s *RetentionSweep) Stop() {
	s.scheduler.Stop()
}
