package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
)

const (
	warningAfterDays = 7
	defaultAfterDays = 30
)

type Repository interface {
	TransitionStatus(ctx context.Context, from []advance.Status, to advance.Status, dueBefore time.Time, reason string) (int64, error)
}

// Transition is one conditional bulk move along the overdue chain.
type Transition struct {
	From      []advance.Status
	To        advance.Status
	GraceDays int
}

// Transitions run in chain order so a single run settles every advance for the day
// and a second run the same day finds nothing left to move.
var Transitions = []Transition{
	{
		From: []advance.Status{
			advance.StatusDisbursed,
			advance.StatusActive,
			advance.StatusDeliveryConfirmed,
			advance.StatusPartiallyRepaid,
		},
		To: advance.StatusOverdue,
	},
	{
		From:      []advance.Status{advance.StatusOverdue},
		To:        advance.StatusDefaultWarning,
		GraceDays: warningAfterDays,
	},
	{
		From:      []advance.Status{advance.StatusDefaultWarning},
		To:        advance.StatusDefaulted,
		GraceDays: defaultAfterDays,
	},
}

type Updater struct {
	repo Repository
}

func NewUpdater(repo Repository) *Updater {
	return &Updater{repo: repo}
}

// Result counts the advances moved into each status.
type Result struct {
	AsOf  time.Time                `json:"as_of"`
	Moved map[advance.Status]int64 `json:"moved"`
}

func (u *Updater) Run(ctx context.Context, asOf time.Time) (*Result, error) {
	today := advance.DateOf(asOf)
	res := &Result{AsOf: today, Moved: make(map[advance.Status]int64, len(Transitions))}

	for _, t := range Transitions {
		threshold := today.AddDate(0, 0, -t.GraceDays)
		reason := fmt.Sprintf("due date before %s", threshold.Format(time.DateOnly))

		n, err := u.repo.TransitionStatus(ctx, t.From, t.To, threshold, reason)
		if err != nil {
			return res, fmt.Errorf("transition to %s: %w", t.To, err)
		}

		res.Moved[t.To] = n
	}

	slog.Info("daily status update finished",
		"module", "lifecycle",
		"operation", "run",
		"run_date", today.Format(time.DateOnly),
		"overdue", res.Moved[advance.StatusOverdue],
		"default_warning", res.Moved[advance.StatusDefaultWarning],
		"defaulted", res.Moved[advance.StatusDefaulted],
	)

	return res, nil
}
