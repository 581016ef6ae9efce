package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
)

// lookaheadDays is how far ahead of the due date an advance enters the cascade.
const lookaheadDays = 4

// Contact holds the farmer's addresses and per-channel consent.
type Contact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	ChatID       string `json:"chat_id,omitempty"`
	Email        string `json:"email,omitempty"`
	PushToken    string `json:"-"`
	ChatEnabled  bool   `json:"chat_enabled"`
	SMSEnabled   bool   `json:"sms_enabled"`
	EmailEnabled bool   `json:"email_enabled"`
	PushEnabled  bool   `json:"push_enabled"`
	VoiceEnabled bool   `json:"voice_enabled"`
}

// OptedOut is true only when both chat and SMS are disabled. Other channels do not count.
func (c Contact) OptedOut() bool {
	return !c.ChatEnabled && !c.SMSEnabled
}

// Address returns where to reach the contact on ch, or false if the channel is unusable.
func (c Contact) Address(ch Channel) (string, bool) {
	var addr string
	var enabled bool

	switch ch {
	case ChannelChat:
		addr, enabled = c.ChatID, c.ChatEnabled
	case ChannelSMS:
		addr, enabled = c.Phone, c.SMSEnabled
	case ChannelVoice:
		addr, enabled = c.Phone, c.VoiceEnabled
	case ChannelEmail:
		addr, enabled = c.Email, c.EmailEnabled
	case ChannelPush:
		addr, enabled = c.PushToken, c.PushEnabled
	}

	return addr, enabled && addr != ""
}

// Candidate is an open advance joined with its contact and prior attempt counts.
type Candidate struct {
	Advance         *advance.Advance
	Contact         Contact
	AttemptsByStage map[Stage]int
}

// Target is one advance selected for outreach today.
type Target struct {
	AdvanceID        uuid.UUID       `json:"advance_id"`
	ContractNumber   string          `json:"contract_number"`
	Contact          Contact         `json:"contact"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	LateFee          decimal.Decimal `json:"late_fee"`
	LateFeePercent   int             `json:"late_fee_percent"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	DueDate          time.Time       `json:"due_date"`
	DaysFromDue      int             `json:"days_from_due"`
	Stage            Stage           `json:"stage"`
	AttemptCount     int             `json:"attempt_count"`
	OptedOut         bool            `json:"opted_out"`
}

type CandidateLister interface {
	ListCandidates(ctx context.Context, statuses []advance.Status, dueOnOrBefore time.Time) ([]Candidate, error)
}

// Selector picks the advances the cascade should touch on a given day.
type Selector struct {
	repo CandidateLister
}

func NewSelector(repo CandidateLister) *Selector {
	return &Selector{repo: repo}
}

func (s *Selector) Targets(ctx context.Context, asOf time.Time) ([]Target, error) {
	today := advance.DateOf(asOf)

	candidates, err := s.repo.ListCandidates(ctx, advance.OpenStatuses, today.AddDate(0, 0, lookaheadDays))
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	targets := make([]Target, 0, len(candidates))

	for _, c := range candidates {
		if c.Advance == nil || !c.Advance.RemainingBalance.IsPositive() {
			continue
		}

		days := advance.DaysBetween(c.Advance.DueDate, today)
		if days < -lookaheadDays {
			continue
		}

		stage := DetermineStage(days)
		b := advance.ComputeBreakdown(c.Advance, today)

		targets = append(targets, Target{
			AdvanceID:        c.Advance.ID,
			ContractNumber:   c.Advance.ContractNumber,
			Contact:          c.Contact,
			RemainingBalance: b.RemainingBalance,
			LateFee:          b.LateFee,
			LateFeePercent:   b.LateFeePercent,
			AmountDue:        b.TotalDue,
			DueDate:          advance.DateOf(c.Advance.DueDate),
			DaysFromDue:      days,
			Stage:            stage,
			AttemptCount:     c.AttemptsByStage[stage],
			OptedOut:         c.Contact.OptedOut(),
		})
	}

	return targets, nil
}
