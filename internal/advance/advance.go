package advance

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("advance not found")
	ErrInvalidState       = errors.New("advance is not in a payable state")
	ErrInvalidAmount      = errors.New("invalid payment amount")
	ErrInvalidDueDate     = errors.New("new due date must be after the current due date")
	ErrInvalidProcessedAt = errors.New("invalid payment time")
	ErrDuplicatePayment   = errors.New("payment already recorded")
)

// Status represents the lifecycle state of an advance.
type Status string

const (
	StatusDisbursed         Status = "DISBURSED"
	StatusActive            Status = "ACTIVE"
	StatusDeliveryConfirmed Status = "DELIVERY_CONFIRMED"
	StatusPartiallyRepaid   Status = "PARTIALLY_REPAID"
	StatusOverdue           Status = "OVERDUE"
	StatusDefaultWarning    Status = "DEFAULT_WARNING"
	StatusDefaulted         Status = "DEFAULTED"
	StatusCompleted         Status = "COMPLETED"
)

// OpenStatuses are the statuses that still carry a collectible balance.
var OpenStatuses = []Status{
	StatusDisbursed,
	StatusActive,
	StatusDeliveryConfirmed,
	StatusPartiallyRepaid,
	StatusOverdue,
	StatusDefaultWarning,
}

// Terminal reports whether no further lifecycle transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDefaulted
}

// Payable reports whether the ledger accepts repayments in this status.
func (s Status) Payable() bool {
	for _, open := range OpenStatuses {
		if s == open {
			return true
		}
	}

	return false
}

// Advance is a funded cash advance against a future delivery.
type Advance struct {
	ID               uuid.UUID
	ContractNumber   string
	ContactID        *uuid.UUID
	PoolID           *uuid.UUID
	Principal        decimal.Decimal
	AccruedInterest  decimal.Decimal
	AmountRepaid     decimal.Decimal // principal and interest only
	LateFeesPaid     decimal.Decimal
	RemainingBalance decimal.Decimal
	DueDate          time.Time
	Status           Status
	RepaymentMethod  string
	RepaymentRef     string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

type TransactionType string

const (
	TransactionPartialRepayment TransactionType = "PARTIAL_REPAYMENT"
	TransactionFinalRepayment   TransactionType = "FINAL_REPAYMENT"
)

// Transaction is an immutable ledger entry. BalanceAfter always equals BalanceBefore - Amount.
type Transaction struct {
	ID               uuid.UUID
	AdvanceID        uuid.UUID
	Type             TransactionType
	Amount           decimal.Decimal
	BalanceBefore    decimal.Decimal
	BalanceAfter     decimal.Decimal
	LateFeePortion   decimal.Decimal
	PrincipalPortion decimal.Decimal
	Method           string
	Reference        string
	ProcessedAt      time.Time
	ProcessedBy      string
}

// LiquidityPool is the capital source that funded one or more advances.
type LiquidityPool struct {
	ID                uuid.UUID
	Name              string
	AvailableCapital  decimal.Decimal
	DeployedCapital   decimal.Decimal
	TotalRepaid       decimal.Decimal
	ActiveAdvances    int
	CompletedAdvances int
	UpdatedAt         time.Time
}

type StatusHistory struct {
	ID        int64
	AdvanceID uuid.UUID
	From      Status
	To        Status
	Reason    string
	Actor     string
	CreatedAt time.Time
}

// DateOf truncates t to its calendar day, keeping the day as observed in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LocalDate is the calendar day of the instant t as observed in loc.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	return DateOf(t.In(loc))
}

// DaysBetween returns the signed number of calendar days from -> to.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}
