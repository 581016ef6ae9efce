package collection_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/collection"
	handler "github.com/MrJamesThe3rd/harvest/internal/http/collection"
	"github.com/MrJamesThe3rd/harvest/internal/job"
)

type stubRunner struct {
	gotAsOf time.Time
	report  *job.Report
	err     error
}

func (s *stubRunner) RunDaily(_ context.Context, asOf time.Time) (*job.Report, error) {
	s.gotAsOf = asOf
	return s.report, s.err
}

type stubTargets struct {
	targets []collection.Target
	err     error
}

func (s stubTargets) Targets(context.Context, time.Time) ([]collection.Target, error) {
	return s.targets, s.err
}

type stubRuns struct {
	run *collection.RunSummary
	err error
}

func (s stubRuns) LatestRun(context.Context) (*collection.RunSummary, error) {
	return s.run, s.err
}

func serve(h *handler.Handler, method, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/collections", h.Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestHandler_Run(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)

	type testCase struct {
		name       string
		target     string
		runner     *stubRunner
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "ok",
			target:     "/collections/run?date=2026-06-15",
			runner:     &stubRunner{report: &job.Report{RunDate: "2026-06-15"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "already running",
			target:     "/collections/run?date=2026-06-15",
			runner:     &stubRunner{err: job.ErrRunInProgress},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "run failure",
			target:     "/collections/run",
			runner:     &stubRunner{err: assert.AnError},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "bad date",
			target:     "/collections/run?date=June",
			runner:     &stubRunner{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := handler.NewHandler(tc.runner, stubTargets{}, stubRuns{}, nairobi)

			rec := serve(h, http.MethodPost, tc.target)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}

	t.Run("date is local midnight", func(t *testing.T) {
		runner := &stubRunner{report: &job.Report{}}
		h := handler.NewHandler(runner, stubTargets{}, stubRuns{}, nairobi)

		serve(h, http.MethodPost, "/collections/run?date=2026-06-15")
		assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, nairobi), runner.gotAsOf)
	})
}

func TestHandler_Targets(t *testing.T) {
	targets := []collection.Target{
		{AdvanceID: uuid.New(), ContractNumber: "ADV-1", Stage: collection.StageFinalNotice, DaysFromDue: 0},
		{AdvanceID: uuid.New(), ContractNumber: "ADV-2", Stage: collection.StageOverdue3, DaysFromDue: 3},
	}

	h := handler.NewHandler(&stubRunner{}, stubTargets{targets: targets}, stubRuns{}, time.UTC)

	rec := serve(h, http.MethodGet, "/collections/targets?date=2026-06-15")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Date    string              `json:"date"`
		Count   int                 `json:"count"`
		Targets []collection.Target `json:"targets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-06-15", resp.Date)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, collection.StageOverdue3, resp.Targets[1].Stage)
}

func TestHandler_LateFee(t *testing.T) {
	h := handler.NewHandler(&stubRunner{}, stubTargets{}, stubRuns{}, time.UTC)

	type testCase struct {
		name        string
		query       string
		wantStatus  int
		wantFee     string
		wantPercent int
	}

	tests := []testCase{
		{name: "one week", query: "amount=1000&days_overdue=3", wantStatus: http.StatusOK, wantFee: "50.00", wantPercent: 5},
		{name: "capped", query: "amount=1000&days_overdue=60", wantStatus: http.StatusOK, wantFee: "200.00", wantPercent: 20},
		{name: "not overdue", query: "amount=1000&days_overdue=0", wantStatus: http.StatusOK, wantFee: "0.00", wantPercent: 0},
		{name: "bad amount", query: "amount=abc&days_overdue=3", wantStatus: http.StatusBadRequest},
		{name: "missing days", query: "amount=10", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h, http.MethodGet, "/collections/late-fee?"+tc.query)
			require.Equal(t, tc.wantStatus, rec.Code)

			if tc.wantStatus != http.StatusOK {
				return
			}

			var lf advance.LateFee
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lf))
			assert.Equal(t, tc.wantFee, lf.Fee.StringFixed(2))
			assert.Equal(t, tc.wantPercent, lf.Percent)
		})
	}
}

func TestHandler_LatestRun(t *testing.T) {
	t.Run("none yet", func(t *testing.T) {
		h := handler.NewHandler(&stubRunner{}, stubTargets{}, stubRuns{}, time.UTC)
		assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/collections/runs/latest").Code)
	})

	t.Run("found", func(t *testing.T) {
		run := &collection.RunSummary{ID: uuid.New(), RuleVersion: "2026-01", Processed: 4}
		h := handler.NewHandler(&stubRunner{}, stubTargets{}, stubRuns{run: run}, time.UTC)

		rec := serve(h, http.MethodGet, "/collections/runs/latest")
		require.Equal(t, http.StatusOK, rec.Code)

		var got collection.RunSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, 4, got.Processed)
	})
}
