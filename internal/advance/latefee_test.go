package advance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
)

func TestCalculateLateFee(t *testing.T) {
	type testCase struct {
		name        string
		amount      string
		daysOverdue int
		wantWeeks   int
		wantPercent int
		wantFee     string
		wantCapped  bool
	}

	tests := []testCase{
		{name: "NotOverdue", amount: "1000", daysOverdue: 0, wantFee: "0.00"},
		{name: "BeforeDue", amount: "1000", daysOverdue: -4, wantFee: "0.00"},
		{name: "FirstDay", amount: "1000", daysOverdue: 1, wantWeeks: 1, wantPercent: 5, wantFee: "50.00"},
		{name: "FullWeek", amount: "1000", daysOverdue: 7, wantWeeks: 1, wantPercent: 5, wantFee: "50.00"},
		{name: "SecondWeek", amount: "10000", daysOverdue: 10, wantWeeks: 2, wantPercent: 10, wantFee: "1000.00"},
		{name: "FourthWeekHitsCap", amount: "1000", daysOverdue: 22, wantWeeks: 4, wantPercent: 20, wantFee: "200.00", wantCapped: true},
		{name: "FarBeyondCap", amount: "1000", daysOverdue: 200, wantWeeks: 29, wantPercent: 20, wantFee: "200.00", wantCapped: true},
		{name: "RoundsHalfUp", amount: "0.10", daysOverdue: 3, wantWeeks: 1, wantPercent: 5, wantFee: "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := advance.CalculateLateFee(decimal.RequireFromString(tt.amount), tt.daysOverdue)

			assert.Equal(t, tt.wantWeeks, got.WeeksOverdue)
			assert.Equal(t, tt.wantPercent, got.Percent)
			assert.Equal(t, tt.wantFee, got.Fee.StringFixed(2))
			assert.Equal(t, tt.wantCapped, got.Capped)
		})
	}
}

func TestCalculateLateFee_PercentBoundedAndMonotonic(t *testing.T) {
	amount := decimal.NewFromInt(2500)
	prev := -1

	for days := -10; days <= 120; days++ {
		got := advance.CalculateLateFee(amount, days)

		assert.GreaterOrEqual(t, got.Percent, 0)
		assert.LessOrEqual(t, got.Percent, 20)
		assert.GreaterOrEqual(t, got.Percent, prev, "percent decreased at day %d", days)

		prev = got.Percent
	}
}
