package aging_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/aging"
)

var asOf = time.Date(2026, 9, 30, 10, 0, 0, 0, time.UTC)

type repoFunc func(ctx context.Context) ([]*advance.Advance, error)

func (f repoFunc) ListOutstanding(ctx context.Context) ([]*advance.Advance, error) { return f(ctx) }

func adv(contract string, daysOverdue int, balance string, status advance.Status) *advance.Advance {
	return &advance.Advance{
		ID:               uuid.New(),
		ContractNumber:   contract,
		RemainingBalance: decimal.RequireFromString(balance),
		DueDate:          time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysOverdue),
		Status:           status,
	}
}

func portfolio() []*advance.Advance {
	return []*advance.Advance{
		adv("ADV-1", -10, "1000.10", advance.StatusActive),
		adv("ADV-2", 0, "250.005", advance.StatusDisbursed),
		adv("ADV-3", 1, "300", advance.StatusOverdue),
		adv("ADV-4", 30, "400", advance.StatusDefaultWarning),
		adv("ADV-5", 31, "500", advance.StatusDefaultWarning),
		adv("ADV-6", 60, "600", advance.StatusPartiallyRepaid),
		adv("ADV-7", 61, "700", advance.StatusOverdue),
		adv("ADV-8", 90, "800", advance.StatusOverdue),
		adv("ADV-9", 91, "900", advance.StatusOverdue),
		adv("ADV-10", 200, "5000", advance.StatusDefaulted),
		adv("ADV-11", 5, "50", advance.StatusCompleted),
	}
}

func TestBucketFor(t *testing.T) {
	type testCase struct {
		days int
		want aging.Bucket
	}

	tests := []testCase{
		{-3, aging.BucketCurrent},
		{0, aging.BucketCurrent},
		{1, aging.Bucket1To30},
		{30, aging.Bucket1To30},
		{31, aging.Bucket31To60},
		{60, aging.Bucket31To60},
		{61, aging.Bucket61To90},
		{90, aging.Bucket61To90},
		{91, aging.BucketOver90},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, aging.BucketFor(tc.days), "days=%d", tc.days)
	}
}

func TestGenerator_Generate(t *testing.T) {
	g := aging.NewGenerator(repoFunc(func(context.Context) ([]*advance.Advance, error) {
		return portfolio(), nil
	}), time.UTC)

	r, err := g.Generate(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, 9, r.Count)
	assert.Equal(t, "5450.11", r.Total.StringFixed(2))
	require.Len(t, r.Buckets, 5)

	want := map[aging.Bucket]struct {
		count   int
		balance string
	}{
		aging.BucketCurrent: {2, "1250.11"},
		aging.Bucket1To30:   {2, "700.00"},
		aging.Bucket31To60:  {2, "1100.00"},
		aging.Bucket61To90:  {2, "1500.00"},
		aging.BucketOver90:  {1, "900.00"},
	}

	for i, b := range r.Buckets {
		assert.Equal(t, aging.Buckets[i], b.Bucket)
		assert.Equal(t, want[b.Bucket].count, b.Count, b.Bucket)
		assert.Equal(t, want[b.Bucket].balance, b.Balance.StringFixed(2), b.Bucket)
	}

	sum := decimal.Zero
	for _, b := range r.Buckets {
		sum = sum.Add(b.Balance)
	}
	assert.True(t, sum.Equal(r.Total))
}

func TestGenerator_GenerateError(t *testing.T) {
	boom := errors.New("timeout")
	g := aging.NewGenerator(repoFunc(func(context.Context) ([]*advance.Advance, error) {
		return nil, boom
	}), time.UTC)

	_, err := g.Generate(context.Background(), asOf)
	assert.ErrorIs(t, err, boom)
}

func TestGenerator_GenerateUsesLocalCalendar(t *testing.T) {
	due := adv("ADV-EDGE", 0, "100", advance.StatusActive)
	instant := time.Date(2026, 9, 30, 22, 30, 0, 0, time.UTC)

	type testCase struct {
		name       string
		loc        *time.Location
		wantBucket aging.Bucket
		wantDays   int
	}

	tests := []testCase{
		{name: "UTCStillDueDay", loc: time.UTC, wantBucket: aging.BucketCurrent, wantDays: 0},
		{name: "EATAlreadyNextDay", loc: time.FixedZone("EAT", 3*60*60), wantBucket: aging.Bucket1To30, wantDays: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := aging.NewGenerator(repoFunc(func(context.Context) ([]*advance.Advance, error) {
				return []*advance.Advance{due}, nil
			}), tc.loc)

			r, err := g.Generate(context.Background(), instant)
			require.NoError(t, err)
			require.Len(t, r.Lines, 1)
			assert.Equal(t, tc.wantBucket, r.Lines[0].Bucket)
			assert.Equal(t, tc.wantDays, r.Lines[0].DaysOverdue)
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	r := aging.Build(nil, asOf)

	assert.Zero(t, r.Count)
	assert.True(t, r.Total.IsZero())
	assert.Len(t, r.Buckets, 5)
	assert.Empty(t, r.Lines)
}

func TestWriteXLSX(t *testing.T) {
	r := aging.Build(portfolio(), asOf)

	var buf bytes.Buffer
	require.NoError(t, aging.WriteXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Advances"}, f.GetSheetList())

	v, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-30", v)

	v, err = f.GetCellValue("Summary", "A4")
	require.NoError(t, err)
	assert.Equal(t, "current", v)

	v, err = f.GetCellValue("Summary", "B9")
	require.NoError(t, err)
	assert.Equal(t, "9", v)

	rows, err := f.GetRows("Advances")
	require.NoError(t, err)
	assert.Len(t, rows, 10)
	assert.Equal(t, "ADV-1", rows[1][0])
}
