package advance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Breakdown is a read-time snapshot of what an advance owes. It is only valid as of AsOf.
type Breakdown struct {
	AdvanceID        uuid.UUID       `json:"advance_id"`
	ContractNumber   string          `json:"contract_number"`
	Principal        decimal.Decimal `json:"principal"`
	AccruedInterest  decimal.Decimal `json:"accrued_interest"`
	LateFee          decimal.Decimal `json:"late_fee"`
	LateFeePercent   int             `json:"late_fee_percent"`
	LateFeeCapped    bool            `json:"late_fee_capped"`
	TotalDue         decimal.Decimal `json:"total_due"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	DaysOverdue      int             `json:"days_overdue"`
	DueDate          time.Time       `json:"due_date"`
	Status           Status          `json:"status"`
	AsOf             time.Time       `json:"as_of"`
}

// DaysOverdue is max(0, asOf - dueDate) in calendar days.
func DaysOverdue(a *Advance, asOf time.Time) int {
	return max(0, DaysBetween(a.DueDate, asOf))
}

// OutstandingLateFee returns the live fee on the remaining balance and the part of it not yet paid.
func OutstandingLateFee(a *Advance, asOf time.Time) (LateFee, decimal.Decimal) {
	lf := CalculateLateFee(a.RemainingBalance, DaysOverdue(a, asOf))
	outstanding := lf.Fee.Sub(a.LateFeesPaid)

	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	return lf, outstanding
}

// ComputeBreakdown never mutates a.
func ComputeBreakdown(a *Advance, asOf time.Time) Breakdown {
	lf, outstanding := OutstandingLateFee(a, asOf)

	return Breakdown{
		AdvanceID:        a.ID,
		ContractNumber:   a.ContractNumber,
		Principal:        a.Principal,
		AccruedInterest:  a.AccruedInterest,
		LateFee:          outstanding,
		LateFeePercent:   lf.Percent,
		LateFeeCapped:    lf.Capped,
		TotalDue:         a.RemainingBalance.Add(outstanding),
		AmountPaid:       a.AmountRepaid.Add(a.LateFeesPaid),
		RemainingBalance: a.RemainingBalance,
		DaysOverdue:      DaysOverdue(a, asOf),
		DueDate:          a.DueDate,
		Status:           a.Status,
		AsOf:             asOf,
	}
}

// Milestone projects the amount owed once a given week overdue begins.
type Milestone struct {
	WeeksOverdue int             `json:"weeks_overdue"`
	Date         time.Time       `json:"date"`
	Percent      int             `json:"fee_percent"`
	LateFee      decimal.Decimal `json:"late_fee"`
	TotalDue     decimal.Decimal `json:"total_due"`
}

type Schedule struct {
	Current    Breakdown   `json:"current"`
	Milestones []Milestone `json:"milestones"`
}

// BuildSchedule projects the weekly late fee steps against the current remaining balance, up to the cap.
func BuildSchedule(a *Advance, asOf time.Time) Schedule {
	sched := Schedule{Current: ComputeBreakdown(a, asOf)}

	for week := 1; week*lateFeeWeeklyPercent <= lateFeeMaxPercent; week++ {
		days := 7*(week-1) + 1
		lf := CalculateLateFee(a.RemainingBalance, days)

		fee := lf.Fee.Sub(a.LateFeesPaid)
		if fee.IsNegative() {
			fee = decimal.Zero
		}

		sched.Milestones = append(sched.Milestones, Milestone{
			WeeksOverdue: week,
			Date:         DateOf(a.DueDate).AddDate(0, 0, days),
			Percent:      lf.Percent,
			LateFee:      fee,
			TotalDue:     a.RemainingBalance.Add(fee),
		})
	}

	return sched
}
