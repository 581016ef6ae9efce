package statement_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/matching"
	"github.com/MrJamesThe3rd/harvest/internal/statement"
)

type resolverFunc func(ctx context.Context, raw string) (matching.Match, error)

func (f resolverFunc) Suggest(ctx context.Context, raw string) (matching.Match, error) {
	return f(ctx, raw)
}

type fakeLedger struct {
	advances map[string]*advance.Advance
	reject   map[string]error
	payments []advance.PaymentParams
}

func (f *fakeLedger) booked(p advance.PaymentParams) bool {
	for _, prev := range f.payments {
		if prev.AdvanceID == p.AdvanceID && prev.Method == p.Method && prev.Reference == p.Reference {
			return true
		}
	}

	return false
}

func (f *fakeLedger) GetByContract(_ context.Context, contract string) (*advance.Advance, error) {
	a, ok := f.advances[contract]
	if !ok {
		return nil, advance.ErrNotFound
	}

	return a, nil
}

func (f *fakeLedger) RecordPayment(_ context.Context, p advance.PaymentParams) (*advance.PaymentResult, error) {
	for contract, a := range f.advances {
		if a.ID == p.AdvanceID {
			if err := f.reject[contract]; err != nil {
				return nil, err
			}
		}
	}

	if p.UniqueReference && f.booked(p) {
		return nil, advance.ErrDuplicatePayment
	}

	f.payments = append(f.payments, p)

	return &advance.PaymentResult{NewBalance: p.Amount}, nil
}

func TestService_Import(t *testing.T) {
	csv := `Date;Description;Debit;Credit
15/06/2026;EFT ADV-1001 KAMAU;;500.00
15/06/2026;NAIVASHA GROWERS LTD;;250.00
16/06/2026;UNKNOWN PAYER;;90.00
16/06/2026;EFT ADV-404;;10.00
17/06/2026;EFT ADV-1003;;999.00
17/06/2026;BANK CHARGES;35.00;
`

	ledger := &fakeLedger{
		advances: map[string]*advance.Advance{
			"ADV-1001": {ID: uuid.New(), ContractNumber: "ADV-1001"},
			"ADV-1002": {ID: uuid.New(), ContractNumber: "ADV-1002"},
			"ADV-1003": {ID: uuid.New(), ContractNumber: "ADV-1003"},
		},
		reject: map[string]error{"ADV-1003": advance.ErrInvalidAmount},
	}

	resolver := resolverFunc(func(_ context.Context, raw string) (matching.Match, error) {
		if contract, ok := matching.ContractFromText(raw); ok {
			return matching.Match{ContractNumber: contract, Source: matching.SourcePattern}, nil
		}

		if strings.Contains(raw, "NAIVASHA") {
			return matching.Match{ContractNumber: "ADV-1002", Source: matching.SourceMapping}, nil
		}

		return matching.Match{}, nil
	})

	svc := statement.NewService(resolver, ledger, time.UTC)

	res, err := svc.Import(context.Background(), strings.NewReader(csv), "ops@harvest")
	require.NoError(t, err)

	assert.Equal(t, "bank-split", res.Profile)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, "750.00", res.Total.StringFixed(2))
	require.Len(t, res.Lines, 6)

	want := []statement.Outcome{
		statement.OutcomeApplied,
		statement.OutcomeApplied,
		statement.OutcomeUnmatched,
		statement.OutcomeUnmatched,
		statement.OutcomeRejected,
		statement.OutcomeIgnored,
	}

	for i, lr := range res.Lines {
		assert.Equal(t, want[i], lr.Outcome, "line %d", i)
	}

	assert.Equal(t, matching.SourceMapping, res.Lines[1].MatchSource)
	assert.Contains(t, res.Lines[4].Error, advance.ErrInvalidAmount.Error())

	require.Len(t, ledger.payments, 2)
	assert.Equal(t, "BANK_TRANSFER", ledger.payments[0].Method)
	assert.Equal(t, "2026-06-15:EFT ADV-1001 KAMAU", ledger.payments[0].Reference)
	assert.Equal(t, "ops@harvest", ledger.payments[0].Actor)
	assert.Equal(t, date(2026, 6, 15), ledger.payments[0].ProcessedAt)
}

func TestService_Import_ResolverFailureIsPerLine(t *testing.T) {
	csv := "Date;Description;Amount\n15/06/2026;EFT KAMAU;100\n"

	svc := statement.NewService(resolverFunc(func(context.Context, string) (matching.Match, error) {
		return matching.Match{}, errors.New("db down")
	}), &fakeLedger{}, time.UTC)

	res, err := svc.Import(context.Background(), strings.NewReader(csv), "ops")
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, statement.OutcomeRejected, res.Lines[0].Outcome)
}

func TestService_Import_UnknownFormat(t *testing.T) {
	svc := statement.NewService(nil, nil, time.UTC)

	_, err := svc.Import(context.Background(), strings.NewReader("hello\nworld\n"), "ops")
	assert.ErrorIs(t, err, statement.ErrUnknownFormat)
}

func contractResolver() resolverFunc {
	return func(_ context.Context, raw string) (matching.Match, error) {
		contract, _ := matching.ContractFromText(raw)
		return matching.Match{ContractNumber: contract, Source: matching.SourcePattern}, nil
	}
}

func TestService_Import_SameStatementTwice(t *testing.T) {
	csv := `Date;Description;Debit;Credit
15/06/2026;EFT ADV-1001 KAMAU;;500.00
16/06/2026;EFT ADV-1001 KAMAU;;120.00
`

	ledger := &fakeLedger{advances: map[string]*advance.Advance{
		"ADV-1001": {ID: uuid.New(), ContractNumber: "ADV-1001"},
	}}

	svc := statement.NewService(contractResolver(), ledger, time.UTC)

	first, err := svc.Import(context.Background(), strings.NewReader(csv), "ops")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Applied)

	again, err := svc.Import(context.Background(), strings.NewReader(csv), "ops")
	require.NoError(t, err)
	assert.Zero(t, again.Applied)
	assert.True(t, again.Total.IsZero())

	for _, lr := range again.Lines {
		assert.Equal(t, statement.OutcomeDuplicate, lr.Outcome)
	}

	assert.Len(t, ledger.payments, 2)
}

func TestService_Import_SameStatementTwiceThroughLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := advance.NewMockRepository(ctrl)

	adv := &advance.Advance{
		ID:               uuid.New(),
		ContractNumber:   "ADV-1001",
		Principal:        decimal.RequireFromString("300"),
		RemainingBalance: decimal.RequireFromString("300"),
		DueDate:          date(2026, 7, 1),
		Status:           advance.StatusActive,
	}

	var booked []*advance.Transaction

	repo.EXPECT().GetAdvanceByContract(gomock.Any(), "ADV-1001").Return(adv, nil).Times(2)
	repo.EXPECT().BeginUpdate(gomock.Any(), adv.ID).DoAndReturn(func(context.Context, uuid.UUID) (advance.UpdateTx, error) {
		tx := advance.NewMockUpdateTx(ctrl)
		snapshot := *adv

		tx.EXPECT().Advance(gomock.Any()).Return(&snapshot, nil)
		tx.EXPECT().TransactionExists(gomock.Any(), "BANK_TRANSFER", gomock.Any()).
			DoAndReturn(func(_ context.Context, method, reference string) (bool, error) {
				for _, b := range booked {
					if b.Method == method && b.Reference == reference {
						return true, nil
					}
				}

				return false, nil
			})
		tx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txn *advance.Transaction) error {
				booked = append(booked, txn)
				return nil
			}).MaxTimes(1)
		tx.EXPECT().UpdateAdvance(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a *advance.Advance) error {
				*adv = *a
				return nil
			}).MaxTimes(1)
		tx.EXPECT().Commit().Return(nil).MaxTimes(1)
		tx.EXPECT().Rollback().Return(nil).AnyTimes()

		return tx, nil
	}).Times(2)

	svc := statement.NewService(contractResolver(), advance.NewService(repo, time.UTC), time.UTC)
	csv := "Date;Description;Amount\n15/06/2026;EFT ADV-1001 KAMAU;200\n"

	first, err := svc.Import(context.Background(), strings.NewReader(csv), "ops")
	require.NoError(t, err)
	require.Len(t, first.Lines, 1)
	assert.Equal(t, statement.OutcomeApplied, first.Lines[0].Outcome)

	again, err := svc.Import(context.Background(), strings.NewReader(csv), "ops")
	require.NoError(t, err)
	require.Len(t, again.Lines, 1)
	assert.Equal(t, statement.OutcomeDuplicate, again.Lines[0].Outcome)

	assert.Len(t, booked, 1)
	assert.Equal(t, "100.00", adv.RemainingBalance.StringFixed(2))
}

func TestService_Import_BooksStatementDayOnLedgerCalendar(t *testing.T) {
	loc := time.FixedZone("CST", -6*60*60)
	ledger := &fakeLedger{advances: map[string]*advance.Advance{
		"ADV-1001": {ID: uuid.New(), ContractNumber: "ADV-1001"},
	}}

	svc := statement.NewService(contractResolver(), ledger, loc)

	_, err := svc.Import(context.Background(), strings.NewReader("Date;Description;Amount\n15/06/2026;EFT ADV-1001;100\n"), "ops")
	require.NoError(t, err)
	require.Len(t, ledger.payments, 1)

	got := ledger.payments[0].ProcessedAt
	assert.Equal(t, "2026-06-15", advance.LocalDate(got, loc).Format(time.DateOnly))
	assert.True(t, ledger.payments[0].UniqueReference)
}
