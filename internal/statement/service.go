package statement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/matching"
)

const methodBankTransfer = "BANK_TRANSFER"

type Outcome string

const (
	OutcomeApplied   Outcome = "APPLIED"
	OutcomeUnmatched Outcome = "UNMATCHED"
	OutcomeRejected  Outcome = "REJECTED"
	OutcomeIgnored   Outcome = "IGNORED"
	OutcomeDuplicate Outcome = "DUPLICATE"
)

type Resolver interface {
	Suggest(ctx context.Context, rawDescription string) (matching.Match, error)
}

type Ledger interface {
	GetByContract(ctx context.Context, contractNumber string) (*advance.Advance, error)
	RecordPayment(ctx context.Context, p advance.PaymentParams) (*advance.PaymentResult, error)
}

type LineResult struct {
	Line           Line             `json:"line"`
	Outcome        Outcome          `json:"outcome"`
	ContractNumber string           `json:"contract_number,omitempty"`
	MatchSource    matching.Source  `json:"match_source,omitempty"`
	NewBalance     *decimal.Decimal `json:"new_balance,omitempty"`
	Error          string           `json:"error,omitempty"`
}

type Result struct {
	Profile string          `json:"profile"`
	Charset string          `json:"charset"`
	Applied int             `json:"applied"`
	Total   decimal.Decimal `json:"total_applied"`
	Lines   []LineResult    `json:"lines"`
}

type Service struct {
	parser   *Parser
	resolver Resolver
	ledger   Ledger
	loc      *time.Location
}

// NewService books statement dates as calendar days in loc.
func NewService(resolver Resolver, ledger Ledger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{parser: NewParser(), resolver: resolver, ledger: ledger, loc: loc}
}

// Import records every resolvable credit in the statement as a bank transfer repayment.
// A failing line is reported in its LineResult and never stops the remaining lines.
// Lines already booked by an earlier import of the same statement come back as DUPLICATE.
func (s *Service) Import(ctx context.Context, r io.Reader, actor string) (*Result, error) {
	parsed, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}

	res := &Result{
		Profile: parsed.Profile,
		Charset: string(parsed.Charset),
		Total:   decimal.Zero,
		Lines:   make([]LineResult, 0, len(parsed.Lines)),
	}

	for _, line := range parsed.Lines {
		lr := s.importLine(ctx, line, actor)
		if lr.Outcome == OutcomeApplied {
			res.Applied++
			res.Total = res.Total.Add(line.Amount)
		}

		res.Lines = append(res.Lines, lr)
	}

	slog.Info("statement imported",
		"module", "statement",
		"operation", "import",
		"profile", res.Profile,
		"lines", len(res.Lines),
		"applied", res.Applied,
	)

	return res, nil
}

func (s *Service) importLine(ctx context.Context, line Line, actor string) LineResult {
	lr := LineResult{Line: line}

	if !line.Credit {
		lr.Outcome = OutcomeIgnored
		return lr
	}

	match, err := s.resolver.Suggest(ctx, line.Description)
	if err != nil {
		lr.Outcome = OutcomeRejected
		lr.Error = err.Error()

		return lr
	}

	if match.ContractNumber == "" {
		lr.Outcome = OutcomeUnmatched
		return lr
	}

	lr.ContractNumber = match.ContractNumber
	lr.MatchSource = match.Source

	adv, err := s.ledger.GetByContract(ctx, match.ContractNumber)
	if err != nil {
		lr.Outcome = OutcomeUnmatched
		if !errors.Is(err, advance.ErrNotFound) {
			lr.Outcome = OutcomeRejected
		}

		lr.Error = err.Error()

		return lr
	}

	pay, err := s.ledger.RecordPayment(ctx, advance.PaymentParams{
		AdvanceID:       adv.ID,
		Amount:          line.Amount,
		Method:          methodBankTransfer,
		Reference:       fmt.Sprintf("%s:%s", line.Date.Format(time.DateOnly), line.Description),
		ProcessedAt:     time.Date(line.Date.Year(), line.Date.Month(), line.Date.Day(), 0, 0, 0, 0, s.loc),
		Actor:           actor,
		UniqueReference: true,
	})
	if errors.Is(err, advance.ErrDuplicatePayment) {
		lr.Outcome = OutcomeDuplicate
		lr.Error = err.Error()

		return lr
	}

	if err != nil {
		lr.Outcome = OutcomeRejected
		lr.Error = err.Error()

		slog.Warn("statement line rejected",
			"module", "statement",
			"advance_id", adv.ID,
			"row", line.Row,
			"error", err,
		)

		return lr
	}

	lr.Outcome = OutcomeApplied
	lr.NewBalance = &pay.NewBalance

	return lr
}
