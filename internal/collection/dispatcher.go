package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
)

//go:generate mockgen -source=dispatcher.go -destination=dispatcher_mock.go -package=collection
type Repository interface {
	CandidateLister
	AttemptExists(ctx context.Context, advanceID uuid.UUID, stage Stage, day time.Time) (bool, error)
	CreateAttempt(ctx context.Context, a *Attempt) error
	SaveRun(ctx context.Context, s *RunSummary) error
}

// Sender delivers a message over a single channel.
type Sender interface {
	Send(ctx context.Context, t Target, msg Message) (Outcome, error)
}

type Options struct {
	Concurrency    int
	ChannelTimeout time.Duration
}

// RunSummary aggregates one dispatcher pass.
type RunSummary struct {
	ID          uuid.UUID             `json:"id"`
	RunDate     time.Time             `json:"run_date"`
	RuleVersion string                `json:"rule_version"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  time.Time             `json:"finished_at"`
	Processed   int                   `json:"processed"`
	ByStage     map[Stage]int         `json:"by_stage"`
	ByStatus    map[AttemptStatus]int `json:"by_status"`
	ByChannel   map[Channel]int       `json:"by_channel"`
	Errors      []string              `json:"errors"`
}

type Dispatcher struct {
	repo     Repository
	selector *Selector
	rules    *RuleSet
	senders  map[Channel]Sender
	opts     Options
	now      func() time.Time
}

func NewDispatcher(repo Repository, rules *RuleSet, senders map[Channel]Sender, opts Options) *Dispatcher {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	if opts.ChannelTimeout <= 0 {
		opts.ChannelTimeout = 10 * time.Second
	}

	return &Dispatcher{
		repo:     repo,
		selector: NewSelector(repo),
		rules:    rules,
		senders:  senders,
		opts:     opts,
		now:      time.Now,
	}
}

func (d *Dispatcher) Targets(ctx context.Context, asOf time.Time) ([]Target, error) {
	return d.selector.Targets(ctx, asOf)
}

type targetResult struct {
	attempt *Attempt
	err     error
}

// Run contacts every target once for asOf's calendar day. Per-target failures are
// collected in the summary; only a failure to list targets aborts the run.
func (d *Dispatcher) Run(ctx context.Context, asOf time.Time) (*RunSummary, error) {
	rules := d.rules
	summary := d.newSummary(asOf)

	targets, err := d.selector.Targets(ctx, asOf)
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		summary.FinishedAt = d.now()
		d.saveRun(ctx, summary)

		return summary, fmt.Errorf("select targets: %w", err)
	}

	results := make([]targetResult, len(targets))

	var g errgroup.Group
	g.SetLimit(d.opts.Concurrency)

	for i, t := range targets {
		g.Go(func() error {
			results[i] = d.process(ctx, rules, t, summary.RunDate)
			return nil
		})
	}

	_ = g.Wait()

	for i, res := range results {
		t := targets[i]
		summary.Processed++
		summary.ByStage[t.Stage]++

		if res.err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", t.ContractNumber, res.err))
			slog.Warn("collection target failed",
				"module", "collection",
				"operation", "dispatch",
				"advance_id", t.AdvanceID,
				"stage", t.Stage,
				"error", res.err,
			)
		}

		if res.attempt == nil {
			continue
		}

		summary.ByStatus[res.attempt.Status]++

		if res.attempt.Status != AttemptSkipped {
			summary.ByChannel[res.attempt.Channel]++
		}
	}

	summary.FinishedAt = d.now()
	d.saveRun(ctx, summary)

	slog.Info("collection run finished",
		"module", "collection",
		"operation", "dispatch",
		"run_date", summary.RunDate.Format(time.DateOnly),
		"processed", summary.Processed,
		"errors", len(summary.Errors),
	)

	return summary, nil
}

// Abort records a run for asOf's day that failed before any target was contacted.
func (d *Dispatcher) Abort(ctx context.Context, asOf time.Time, cause error) *RunSummary {
	summary := d.newSummary(asOf)
	summary.Errors = append(summary.Errors, cause.Error())
	summary.FinishedAt = summary.StartedAt
	d.saveRun(ctx, summary)

	return summary
}

func (d *Dispatcher) newSummary(asOf time.Time) *RunSummary {
	return &RunSummary{
		ID:          uuid.New(),
		RunDate:     advance.DateOf(asOf),
		RuleVersion: d.rules.Version(),
		StartedAt:   d.now(),
		ByStage:     make(map[Stage]int),
		ByStatus:    make(map[AttemptStatus]int),
		ByChannel:   make(map[Channel]int),
		Errors:      []string{},
	}
}

func (d *Dispatcher) saveRun(ctx context.Context, s *RunSummary) {
	if err := d.repo.SaveRun(ctx, s); err != nil {
		s.Errors = append(s.Errors, fmt.Sprintf("save run: %v", err))
		slog.Error("failed to save collection run", "module", "collection", "error", err)
	}
}

func (d *Dispatcher) process(ctx context.Context, rules *RuleSet, t Target, day time.Time) targetResult {
	rule, ok := rules.Lookup(t.Stage)
	if !ok {
		return targetResult{err: fmt.Errorf("%w %s", ErrNoRule, t.Stage)}
	}

	exists, err := d.repo.AttemptExists(ctx, t.AdvanceID, t.Stage, day)
	if err != nil {
		return targetResult{err: fmt.Errorf("check attempts: %w", err)}
	}

	if exists {
		return targetResult{attempt: d.skipped(t, rule, day, "already attempted today")}
	}

	if t.OptedOut {
		return d.record(ctx, d.skipped(t, rule, day, "contact opted out of chat and sms"))
	}

	if rule.MaxAttempts > 0 && t.AttemptCount >= rule.MaxAttempts {
		return d.record(ctx, d.skipped(t, rule, day, fmt.Sprintf("max attempts %d reached", rule.MaxAttempts)))
	}

	msg := Render(t, rule)

	var failures []string

	for _, ch := range rule.Channels {
		out, err := d.send(ctx, ch, t, msg)
		if err == nil && out.Status.Succeeded() {
			return d.record(ctx, &Attempt{
				AdvanceID:   t.AdvanceID,
				Stage:       t.Stage,
				Channel:     ch,
				Status:      out.Status,
				MessageID:   out.MessageID,
				AttemptDate: day,
			})
		}

		if err == nil {
			err = fmt.Errorf("gateway returned %s", out.Status)
		}

		failures = append(failures, fmt.Sprintf("%s: %v", ch, err))
	}

	return d.record(ctx, &Attempt{
		AdvanceID:   t.AdvanceID,
		Stage:       t.Stage,
		Channel:     rule.Channels[0],
		Status:      AttemptFailed,
		Error:       strings.Join(failures, "; "),
		AttemptDate: day,
	})
}

func (d *Dispatcher) skipped(t Target, rule Rule, day time.Time, reason string) *Attempt {
	return &Attempt{
		AdvanceID:   t.AdvanceID,
		Stage:       t.Stage,
		Channel:     rule.Channels[0],
		Status:      AttemptSkipped,
		Error:       reason,
		AttemptDate: day,
	}
}

func (d *Dispatcher) record(ctx context.Context, a *Attempt) targetResult {
	if err := d.repo.CreateAttempt(ctx, a); err != nil {
		return targetResult{attempt: a, err: fmt.Errorf("create attempt: %w", err)}
	}

	return targetResult{attempt: a}
}

type sendResult struct {
	out Outcome
	err error
}

// send bounds a single gateway call by the channel timeout, even if the sender ignores ctx.
func (d *Dispatcher) send(ctx context.Context, ch Channel, t Target, msg Message) (Outcome, error) {
	sender, ok := d.senders[ch]
	if !ok {
		return Outcome{Status: AttemptSkipped}, fmt.Errorf("%w %s", ErrNoSender, ch)
	}

	if _, ok := t.Contact.Address(ch); !ok {
		return Outcome{Status: AttemptSkipped}, fmt.Errorf("%w %s", ErrNoAddress, ch)
	}

	cctx, cancel := context.WithTimeout(ctx, d.opts.ChannelTimeout)
	defer cancel()

	done := make(chan sendResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sendResult{out: Outcome{Status: AttemptFailed}, err: fmt.Errorf("sender panic: %v", r)}
			}
		}()

		out, err := sender.Send(cctx, t, msg)
		done <- sendResult{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-cctx.Done():
		err := cctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", d.opts.ChannelTimeout, err)
		}

		return Outcome{Status: AttemptFailed}, err
	}
}
