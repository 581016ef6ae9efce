package job

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler fires the Runner once a day at a fixed local wall-clock time.
type Scheduler struct {
	runner       *Runner
	hour, minute int
	loc          *time.Location
	now          func() time.Time
}

func NewScheduler(runner *Runner, hour, minute int, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{runner: runner, hour: hour, minute: minute, loc: loc, now: time.Now}
}

// NextRun returns the first hour:minute in loc strictly after now.
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)

	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}

	return next
}

// Start blocks until ctx is cancelled. A failed run is logged and the next day is still scheduled.
func (s *Scheduler) Start(ctx context.Context) error {
	for {
		now := s.now()
		next := NextRun(now, s.hour, s.minute, s.loc)

		slog.Info("next collection run scheduled", "module", "job", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		report, err := s.runner.RunDaily(ctx, s.now())

		switch {
		case errors.Is(err, ErrRunInProgress):
			slog.Info("daily run skipped, another instance holds the lock", "module", "job")
		case err != nil:
			slog.Error("daily run failed", "module", "job", "operation", "run_daily", "error", err)
		default:
			slog.Info("daily run completed",
				"module", "job",
				"operation", "run_daily",
				"run_date", report.RunDate,
				"processed", report.Collection.Processed,
			)
		}
	}
}
