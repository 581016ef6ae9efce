package advance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/collection"
	handler "github.com/MrJamesThe3rd/harvest/internal/http/advance"
	"github.com/MrJamesThe3rd/harvest/internal/http/auth"
)

type attemptsFunc func(ctx context.Context, id uuid.UUID) ([]*collection.Attempt, error)

func (f attemptsFunc) ListAttempts(ctx context.Context, id uuid.UUID) ([]*collection.Attempt, error) {
	return f(ctx, id)
}

func noAttempts() attemptsFunc {
	return func(context.Context, uuid.UUID) ([]*collection.Attempt, error) { return nil, nil }
}

// overdue owes 1000 and was due 2026-06-01.
func overdue() *advance.Advance {
	return &advance.Advance{
		ID:               uuid.New(),
		ContractNumber:   "ADV-3001",
		Principal:        decimal.RequireFromString("1000"),
		AccruedInterest:  decimal.Zero,
		AmountRepaid:     decimal.Zero,
		LateFeesPaid:     decimal.Zero,
		RemainingBalance: decimal.RequireFromString("1000"),
		DueDate:          time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:           advance.StatusOverdue,
	}
}

func newRouter(repo advance.Repository, attempts handler.AttemptLister) http.Handler {
	return newRouterIn(repo, attempts, time.UTC)
}

func newRouterIn(repo advance.Repository, attempts handler.AttemptLister, loc *time.Location) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Actor(""))
	r.Route("/advances", handler.NewHandler(advance.NewService(repo, loc), attempts).Routes)

	return r
}

func TestHandler_Balance(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := advance.NewMockRepository(ctrl)
	adv := overdue()

	repo.EXPECT().GetAdvance(gomock.Any(), adv.ID).Return(adv, nil)

	req := httptest.NewRequest(http.MethodGet, "/advances/"+adv.ID.String()+"/balance?as_of=2026-06-15", nil)
	rec := httptest.NewRecorder()
	newRouter(repo, noAttempts()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body advance.Breakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 14, body.DaysOverdue)
	assert.Equal(t, 10, body.LateFeePercent)
	assert.Equal(t, "100.00", body.LateFee.StringFixed(2))
	assert.Equal(t, "1100.00", body.TotalDue.StringFixed(2))
}

func TestHandler_Balance_AsOfOnLedgerCalendar(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := advance.NewMockRepository(ctrl)
	adv := overdue()

	repo.EXPECT().GetAdvance(gomock.Any(), adv.ID).Return(adv, nil)

	req := httptest.NewRequest(http.MethodGet, "/advances/"+adv.ID.String()+"/balance?as_of=2026-06-15", nil)
	rec := httptest.NewRecorder()
	newRouterIn(repo, noAttempts(), time.FixedZone("CST", -6*60*60)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body advance.Breakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 14, body.DaysOverdue)
	assert.Equal(t, "2026-06-15", body.AsOf.Format(time.DateOnly))
}

func TestHandler_Errors(t *testing.T) {
	type testCase struct {
		name       string
		method     string
		path       func(id uuid.UUID) string
		body       string
		setup      func(ctrl *gomock.Controller, repo *advance.MockRepository, id uuid.UUID)
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "invalid id",
			method:     http.MethodGet,
			path:       func(uuid.UUID) string { return "/advances/nope/balance" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "not found",
			method: http.MethodGet,
			path:   func(id uuid.UUID) string { return "/advances/" + id.String() + "/schedule" },
			setup: func(_ *gomock.Controller, repo *advance.MockRepository, id uuid.UUID) {
				repo.EXPECT().GetAdvance(gomock.Any(), id).Return(nil, advance.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad as_of",
			method:     http.MethodGet,
			path:       func(id uuid.UUID) string { return "/advances/" + id.String() + "/balance?as_of=15-06-2026" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed payment body",
			method:     http.MethodPost,
			path:       func(id uuid.UUID) string { return "/advances/" + id.String() + "/payments" },
			body:       `{"amount":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "payment without method",
			method:     http.MethodPost,
			path:       func(id uuid.UUID) string { return "/advances/" + id.String() + "/payments" },
			body:       `{"amount":"10"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "extension with bad date",
			method:     http.MethodPost,
			path:       func(id uuid.UUID) string { return "/advances/" + id.String() + "/extend" },
			body:       `{"new_due_date":"tomorrow","reason":"harvest delayed"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "payment on completed advance",
			method: http.MethodPost,
			path:   func(id uuid.UUID) string { return "/advances/" + id.String() + "/payments" },
			body:   `{"amount":"10","method":"CASH"}`,
			setup: func(ctrl *gomock.Controller, repo *advance.MockRepository, id uuid.UUID) {
				adv := overdue()
				adv.ID = id
				adv.Status = advance.StatusCompleted

				tx := advance.NewMockUpdateTx(ctrl)
				tx.EXPECT().Advance(gomock.Any()).Return(adv, nil)
				tx.EXPECT().Rollback().Return(nil).AnyTimes()
				repo.EXPECT().BeginUpdate(gomock.Any(), id).Return(tx, nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "payment dated in the future",
			method: http.MethodPost,
			path:   func(id uuid.UUID) string { return "/advances/" + id.String() + "/payments" },
			body:   `{"amount":"10","method":"CASH","processed_at":"2099-01-01T00:00:00Z"}`,
			setup: func(ctrl *gomock.Controller, repo *advance.MockRepository, id uuid.UUID) {
				adv := overdue()
				adv.ID = id

				tx := advance.NewMockUpdateTx(ctrl)
				tx.EXPECT().Advance(gomock.Any()).Return(adv, nil)
				tx.EXPECT().Rollback().Return(nil).AnyTimes()
				repo.EXPECT().BeginUpdate(gomock.Any(), id).Return(tx, nil)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "payment dated before the advance existed",
			method: http.MethodPost,
			path:   func(id uuid.UUID) string { return "/advances/" + id.String() + "/payments" },
			body:   `{"amount":"10","method":"CASH","processed_at":"2026-05-01T10:00:00Z"}`,
			setup: func(ctrl *gomock.Controller, repo *advance.MockRepository, id uuid.UUID) {
				adv := overdue()
				adv.ID = id
				adv.CreatedAt = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

				tx := advance.NewMockUpdateTx(ctrl)
				tx.EXPECT().Advance(gomock.Any()).Return(adv, nil)
				tx.EXPECT().Rollback().Return(nil).AnyTimes()
				repo.EXPECT().BeginUpdate(gomock.Any(), id).Return(tx, nil)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "storage failure",
			method: http.MethodGet,
			path:   func(id uuid.UUID) string { return "/advances/" + id.String() },
			setup: func(_ *gomock.Controller, repo *advance.MockRepository, id uuid.UUID) {
				repo.EXPECT().GetAdvance(gomock.Any(), id).Return(nil, assert.AnError)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := advance.NewMockRepository(ctrl)
			id := uuid.New()

			if tc.setup != nil {
				tc.setup(ctrl, repo, id)
			}

			req := httptest.NewRequest(tc.method, tc.path(id), strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			newRouter(repo, noAttempts()).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_RecordPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := advance.NewMockRepository(ctrl)
	tx := advance.NewMockUpdateTx(ctrl)
	adv := overdue()

	repo.EXPECT().BeginUpdate(gomock.Any(), adv.ID).Return(tx, nil)
	tx.EXPECT().Advance(gomock.Any()).Return(adv, nil)
	tx.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, t2 *advance.Transaction) error {
			assert.Equal(t, "api", t2.ProcessedBy)
			assert.Equal(t, "MM-77", t2.Reference)
			return nil
		})
	tx.EXPECT().UpdateAdvance(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	body := `{"amount":"300","method":"MOBILE_MONEY","reference":"MM-77","processed_at":"2026-06-15T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/advances/"+adv.ID.String()+"/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(repo, noAttempts()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		PreviousBalance decimal.Decimal `json:"previous_balance"`
		NewBalance      decimal.Decimal `json:"new_balance"`
		FullyPaid       bool            `json:"fully_paid"`
		Status          advance.Status  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1100.00", resp.PreviousBalance.StringFixed(2))
	assert.Equal(t, "800.00", resp.NewBalance.StringFixed(2))
	assert.False(t, resp.FullyPaid)
	assert.Equal(t, advance.StatusPartiallyRepaid, resp.Status)
}

func TestHandler_Extend(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := advance.NewMockRepository(ctrl)
	tx := advance.NewMockUpdateTx(ctrl)
	adv := overdue()

	repo.EXPECT().BeginUpdate(gomock.Any(), adv.ID).Return(tx, nil)
	tx.EXPECT().Advance(gomock.Any()).Return(adv, nil)
	tx.EXPECT().UpdateAdvance(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().AppendStatusHistory(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	body := `{"new_due_date":"2026-07-01","reason":"late harvest"}`
	req := httptest.NewRequest(http.MethodPost, "/advances/"+adv.ID.String()+"/extend", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newRouter(repo, noAttempts()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		NewDueDate         string          `json:"new_due_date"`
		ExtensionDays      int             `json:"extension_days"`
		AdditionalInterest decimal.Decimal `json:"additional_interest"`
		Status             advance.Status  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-07-01", resp.NewDueDate)
	assert.Equal(t, 30, resp.ExtensionDays)
	assert.Equal(t, "6.58", resp.AdditionalInterest.StringFixed(2))
	assert.Equal(t, advance.StatusActive, resp.Status)
}

func TestHandler_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := advance.NewMockRepository(ctrl)
	adv := overdue()

	repo.EXPECT().GetAdvance(gomock.Any(), adv.ID).Return(adv, nil)
	repo.EXPECT().ListTransactions(gomock.Any(), adv.ID).Return([]*advance.Transaction{
		{ID: uuid.New(), AdvanceID: adv.ID, Type: advance.TransactionPartialRepayment, Amount: decimal.RequireFromString("100")},
	}, nil)
	repo.EXPECT().ListStatusHistory(gomock.Any(), adv.ID).Return([]*advance.StatusHistory{
		{AdvanceID: adv.ID, From: advance.StatusActive, To: advance.StatusOverdue, Reason: "grace period elapsed"},
	}, nil)

	attempts := attemptsFunc(func(_ context.Context, id uuid.UUID) ([]*collection.Attempt, error) {
		return []*collection.Attempt{{AdvanceID: id, Stage: collection.StageOverdue3, Channel: collection.ChannelSMS, Status: collection.AttemptSent}}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/advances/"+adv.ID.String()+"/history", nil)
	rec := httptest.NewRecorder()
	newRouter(repo, attempts).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions  []json.RawMessage     `json:"transactions"`
		StatusChanges []json.RawMessage     `json:"status_changes"`
		Attempts      []*collection.Attempt `json:"collection_attempts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Transactions, 1)
	assert.Len(t, resp.StatusChanges, 1)
	require.Len(t, resp.Attempts, 1)
	assert.Equal(t, collection.ChannelSMS, resp.Attempts[0].Channel)
}
