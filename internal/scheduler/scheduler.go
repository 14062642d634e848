package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nikmel/jobwire/internal/pipeline"
)

// Runner is the entry point the scheduler invokes; satisfied by
// *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (pipeline.Summary, error)
}

// Scheduler owns the timer loop: it runs the pipeline once on start, then on
// every tick of the configured interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that triggers a run at the given interval.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It triggers one immediate run, then ticks on the
// configured interval. Returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, err := s.runner.Run(ctx, pipeline.Options{})
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		// An on-demand command run is still going; this tick is skipped
		// rather than queued behind it.
		s.logger.Info("skipping scheduled run, another run is in progress")
	case err != nil:
		s.logger.Error("scheduled run failed", "error", err)
	}
}
