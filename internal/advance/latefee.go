package advance

import "github.com/shopspring/decimal"

const (
	lateFeeWeeklyPercent = 5
	lateFeeMaxPercent    = 20
)

// LateFee is the result of a late fee computation.
type LateFee struct {
	Amount       decimal.Decimal `json:"amount"`
	DaysOverdue  int             `json:"days_overdue"`
	WeeksOverdue int             `json:"weeks_overdue"`
	Percent      int             `json:"fee_percent"`
	Fee          decimal.Decimal `json:"fee_amount"`
	Capped       bool            `json:"capped"`
}

// CalculateLateFee charges 5% per started week overdue, capped at 20%, rounded to cents.
// Zero or negative days overdue carry no fee.
func CalculateLateFee(amount decimal.Decimal, daysOverdue int) LateFee {
	lf := LateFee{Amount: amount, Fee: decimal.Zero}
	if daysOverdue <= 0 {
		return lf
	}

	weeks := (daysOverdue + 6) / 7
	percent := min(weeks*lateFeeWeeklyPercent, lateFeeMaxPercent)

	lf.DaysOverdue = daysOverdue
	lf.WeeksOverdue = weeks
	lf.Percent = percent
	lf.Capped = percent == lateFeeMaxPercent
	lf.Fee = amount.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(2)

	return lf
}
