package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/harvest/internal/collection"
	"github.com/MrJamesThe3rd/harvest/internal/lifecycle"
)

type StatusUpdater interface {
	Run(ctx context.Context, asOf time.Time) (*lifecycle.Result, error)
}

type Dispatcher interface {
	Run(ctx context.Context, asOf time.Time) (*collection.RunSummary, error)
	Abort(ctx context.Context, asOf time.Time, cause error) *collection.RunSummary
}

type Report struct {
	RunDate    string                 `json:"run_date"`
	Statuses   *lifecycle.Result      `json:"statuses"`
	Collection *collection.RunSummary `json:"collection"`
	Errors     []string               `json:"errors"`
}

// Runner executes the once-a-day status sweep followed by the collection cascade.
type Runner struct {
	locker     Locker
	updater    StatusUpdater
	dispatcher Dispatcher
	loc        *time.Location
	lockTTL    time.Duration
}

func NewRunner(locker Locker, updater StatusUpdater, dispatcher Dispatcher, loc *time.Location, lockTTL time.Duration) *Runner {
	if loc == nil {
		loc = time.UTC
	}

	if lockTTL <= 0 {
		lockTTL = 2 * time.Hour
	}

	return &Runner{
		locker:     locker,
		updater:    updater,
		dispatcher: dispatcher,
		loc:        loc,
		lockTTL:    lockTTL,
	}
}

// LockKey is the run-lock name for the local calendar day of asOf.
func (r *Runner) LockKey(asOf time.Time) string {
	return "collections:daily:" + asOf.In(r.loc).Format(time.DateOnly)
}

// RunDaily returns ErrRunInProgress if another run for the same local day holds the lock.
func (r *Runner) RunDaily(ctx context.Context, asOf time.Time) (*Report, error) {
	asOf = asOf.In(r.loc)
	key := r.LockKey(asOf)

	release, err := r.locker.Acquire(ctx, key, r.lockTTL)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("failed to release run lock", "module", "job", "key", key, "error", err)
		}
	}()

	report := &Report{RunDate: asOf.Format(time.DateOnly), Errors: []string{}}

	statuses, err := r.updater.Run(ctx, asOf)
	if err != nil {
		err = fmt.Errorf("updating statuses: %w", err)
		report.Errors = append(report.Errors, err.Error())
		report.Collection = r.dispatcher.Abort(context.WithoutCancel(ctx), asOf, err)

		return report, err
	}

	report.Statuses = statuses

	summary, err := r.dispatcher.Run(ctx, asOf)
	report.Collection = summary

	if err != nil {
		err = fmt.Errorf("dispatching collections: %w", err)
		report.Errors = append(report.Errors, err.Error())

		return report, err
	}

	return report, nil
}
