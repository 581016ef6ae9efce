package advance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=advance
type Repository interface {
	GetAdvance(ctx context.Context, id uuid.UUID) (*Advance, error)
	GetAdvanceByContract(ctx context.Context, contractNumber string) (*Advance, error)
	ListTransactions(ctx context.Context, advanceID uuid.UUID) ([]*Transaction, error)
	ListStatusHistory(ctx context.Context, advanceID uuid.UUID) ([]*StatusHistory, error)

	BeginUpdate(ctx context.Context, advanceID uuid.UUID) (UpdateTx, error)
}

// UpdateTx serializes a read-modify-write of one advance. Nothing is visible until Commit.
type UpdateTx interface {
	Advance(ctx context.Context) (*Advance, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	UpdateAdvance(ctx context.Context, a *Advance) error
	ApplyPoolRepayment(ctx context.Context, poolID uuid.UUID, repaid, principal decimal.Decimal) error
	AppendStatusHistory(ctx context.Context, h *StatusHistory) error
	TransactionExists(ctx context.Context, method, reference string) (bool, error)
	Commit() error
	Rollback() error
}

const (
	systemActor = "system"
	dayCount    = 365

	// maxClockSkew tolerates payer clocks running slightly ahead of ours.
	maxClockSkew = 5 * time.Minute
)

// annualReferenceRate prices due date extensions.
var annualReferenceRate = decimal.RequireFromString("0.08")

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService evaluates every as-of instant on the calendar of loc, the same
// calendar the collection run uses to quote amounts due.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}

	return &Service{repo: repo, loc: loc, now: time.Now}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

type PaymentParams struct {
	AdvanceID   uuid.UUID
	Amount      decimal.Decimal
	Method      string
	Reference   string
	ProcessedAt time.Time
	Actor       string

	// UniqueReference rejects the payment with ErrDuplicatePayment when the advance
	// already holds a transaction with the same method and reference.
	UniqueReference bool
}

type PaymentResult struct {
	Transaction     *Transaction
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	FullyPaid       bool
	LateFee         decimal.Decimal
	Status          Status
}

// RecordPayment applies one repayment. The transaction, advance, pool and history
// writes either all commit or none do.
func (s *Service) RecordPayment(ctx context.Context, p PaymentParams) (*PaymentResult, error) {
	itx, err := s.repo.BeginUpdate(ctx, p.AdvanceID)
	if err != nil {
		return nil, fmt.Errorf("begin payment: %w", err)
	}
	defer itx.Rollback()

	adv, err := itx.Advance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load advance: %w", err)
	}

	if !adv.Status.Payable() {
		return nil, fmt.Errorf("%w: status %s", ErrInvalidState, adv.Status)
	}

	now := s.now()

	processedAt := p.ProcessedAt
	if processedAt.IsZero() {
		processedAt = now
	}

	if processedAt.After(now.Add(maxClockSkew)) {
		return nil, fmt.Errorf("%w: %s is in the future", ErrInvalidProcessedAt, processedAt.Format(time.RFC3339))
	}

	if !adv.CreatedAt.IsZero() && LocalDate(processedAt, s.loc).Before(LocalDate(adv.CreatedAt, s.loc)) {
		return nil, fmt.Errorf("%w: %s is before the advance was created", ErrInvalidProcessedAt, processedAt.Format(time.RFC3339))
	}

	if p.UniqueReference && p.Reference != "" {
		exists, err := itx.TransactionExists(ctx, p.Method, p.Reference)
		if err != nil {
			return nil, fmt.Errorf("check reference: %w", err)
		}

		if exists {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicatePayment, p.Method, p.Reference)
		}
	}

	actor := p.Actor
	if actor == "" {
		actor = systemActor
	}

	_, lateFee := OutstandingLateFee(adv, processedAt.In(s.loc))
	totalDue := adv.RemainingBalance.Add(lateFee)

	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	if p.Amount.GreaterThan(totalDue) {
		return nil, fmt.Errorf("%w: %s exceeds total due %s", ErrInvalidAmount, p.Amount.StringFixed(2), totalDue.StringFixed(2))
	}

	feePortion := decimal.Min(p.Amount, lateFee)
	principalPortion := p.Amount.Sub(feePortion)
	newBalance := totalDue.Sub(p.Amount)
	fullyPaid := !newBalance.IsPositive()

	txType := TransactionPartialRepayment
	if fullyPaid {
		txType = TransactionFinalRepayment
	}

	tx := &Transaction{
		AdvanceID:        adv.ID,
		Type:             txType,
		Amount:           p.Amount,
		BalanceBefore:    totalDue,
		BalanceAfter:     newBalance,
		LateFeePortion:   feePortion,
		PrincipalPortion: principalPortion,
		Method:           p.Method,
		Reference:        p.Reference,
		ProcessedAt:      processedAt,
		ProcessedBy:      actor,
	}

	prevStatus := adv.Status

	adv.AmountRepaid = adv.AmountRepaid.Add(principalPortion)
	adv.LateFeesPaid = adv.LateFeesPaid.Add(feePortion)
	adv.RemainingBalance = adv.RemainingBalance.Sub(principalPortion)
	adv.RepaymentMethod = p.Method
	adv.RepaymentRef = p.Reference
	adv.Status = StatusPartiallyRepaid

	if fullyPaid {
		adv.Status = StatusCompleted
		adv.RemainingBalance = decimal.Zero
	}

	if err := itx.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := itx.UpdateAdvance(ctx, adv); err != nil {
		return nil, fmt.Errorf("update advance: %w", err)
	}

	if fullyPaid {
		if adv.PoolID != nil {
			if err := itx.ApplyPoolRepayment(ctx, *adv.PoolID, p.Amount, adv.Principal); err != nil {
				return nil, fmt.Errorf("reconcile pool: %w", err)
			}
		}

		if err := itx.AppendStatusHistory(ctx, &StatusHistory{
			AdvanceID: adv.ID,
			From:      prevStatus,
			To:        StatusCompleted,
			Reason:    fmt.Sprintf("fully repaid via %s", p.Method),
			Actor:     actor,
		}); err != nil {
			return nil, fmt.Errorf("append status history: %w", err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	slog.Info("payment recorded",
		"module", "advance",
		"operation", "record_payment",
		"advance_id", adv.ID,
		"amount", p.Amount.StringFixed(2),
		"late_fee", lateFee.StringFixed(2),
		"new_balance", newBalance.StringFixed(2),
		"status", adv.Status,
	)

	return &PaymentResult{
		Transaction:     tx,
		PreviousBalance: totalDue,
		NewBalance:      newBalance,
		FullyPaid:       fullyPaid,
		LateFee:         lateFee,
		Status:          adv.Status,
	}, nil
}

type ExtensionParams struct {
	AdvanceID  uuid.UUID
	NewDueDate time.Time
	Reason     string
	Actor      string
	AsOf       time.Time
}

type ExtensionResult struct {
	PreviousDueDate    time.Time
	NewDueDate         time.Time
	ExtensionDays      int
	AdditionalInterest decimal.Decimal
	NewBalance         decimal.Decimal
	Status             Status
}

// ExtensionInterest prices an extension at the daily share of the annual reference rate.
func ExtensionInterest(balance decimal.Decimal, days int) decimal.Decimal {
	return balance.
		Mul(annualReferenceRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(dayCount)).
		Round(2)
}

func (s *Service) ExtendDueDate(ctx context.Context, p ExtensionParams) (*ExtensionResult, error) {
	itx, err := s.repo.BeginUpdate(ctx, p.AdvanceID)
	if err != nil {
		return nil, fmt.Errorf("begin extension: %w", err)
	}
	defer itx.Rollback()

	adv, err := itx.Advance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load advance: %w", err)
	}

	if adv.Status.Terminal() {
		return nil, fmt.Errorf("%w: status %s", ErrInvalidState, adv.Status)
	}

	prevDue := DateOf(adv.DueDate)
	newDue := DateOf(p.NewDueDate)

	if !newDue.After(prevDue) {
		return nil, fmt.Errorf("%w: %s is not after %s", ErrInvalidDueDate,
			newDue.Format(time.DateOnly), prevDue.Format(time.DateOnly))
	}

	asOf := p.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}

	actor := p.Actor
	if actor == "" {
		actor = systemActor
	}

	days := DaysBetween(prevDue, newDue)
	interest := ExtensionInterest(adv.RemainingBalance, days)
	prevStatus := adv.Status

	adv.DueDate = newDue
	adv.AccruedInterest = adv.AccruedInterest.Add(interest)
	adv.RemainingBalance = adv.RemainingBalance.Add(interest)
	adv.Status = StatusActive
	adv.Notes = appendNote(adv.Notes, fmt.Sprintf("[%s] due date extended from %s to %s by %s (+%s interest): %s",
		LocalDate(asOf, s.loc).Format(time.DateOnly),
		prevDue.Format(time.DateOnly),
		newDue.Format(time.DateOnly),
		actor,
		interest.StringFixed(2),
		p.Reason,
	))

	if err := itx.UpdateAdvance(ctx, adv); err != nil {
		return nil, fmt.Errorf("update advance: %w", err)
	}

	if err := itx.AppendStatusHistory(ctx, &StatusHistory{
		AdvanceID: adv.ID,
		From:      prevStatus,
		To:        StatusActive,
		Reason:    "due date extended: " + p.Reason,
		Actor:     actor,
	}); err != nil {
		return nil, fmt.Errorf("append status history: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit extension: %w", err)
	}

	return &ExtensionResult{
		PreviousDueDate:    prevDue,
		NewDueDate:         newDue,
		ExtensionDays:      days,
		AdditionalInterest: interest,
		NewBalance:         adv.RemainingBalance,
		Status:             adv.Status,
	}, nil
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}

	return notes + "\n" + note
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Advance, error) {
	return s.repo.GetAdvance(ctx, id)
}

func (s *Service) GetByContract(ctx context.Context, contractNumber string) (*Advance, error) {
	return s.repo.GetAdvanceByContract(ctx, contractNumber)
}

func (s *Service) Balance(ctx context.Context, id uuid.UUID, asOf time.Time) (*Breakdown, error) {
	adv, err := s.repo.GetAdvance(ctx, id)
	if err != nil {
		return nil, err
	}

	b := ComputeBreakdown(adv, asOf.In(s.loc))

	return &b, nil
}

func (s *Service) Schedule(ctx context.Context, id uuid.UUID, asOf time.Time) (*Schedule, error) {
	adv, err := s.repo.GetAdvance(ctx, id)
	if err != nil {
		return nil, err
	}

	sched := BuildSchedule(adv, asOf.In(s.loc))

	return &sched, nil
}

type History struct {
	Transactions  []*Transaction
	StatusChanges []*StatusHistory
}

func (s *Service) History(ctx context.Context, id uuid.UUID) (*History, error) {
	if _, err := s.repo.GetAdvance(ctx, id); err != nil {
		return nil, err
	}

	txs, err := s.repo.ListTransactions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	changes, err := s.repo.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}

	return &History{Transactions: txs, StatusChanges: changes}, nil
}
