package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/aging"
	"github.com/MrJamesThe3rd/harvest/internal/http/report"
)

type generatorFunc func(ctx context.Context, asOf time.Time) (*aging.Report, error)

func (f generatorFunc) Generate(ctx context.Context, asOf time.Time) (*aging.Report, error) {
	return f(ctx, asOf)
}

func sampleReport(_ context.Context, asOf time.Time) (*aging.Report, error) {
	return aging.Build([]*advance.Advance{
		{
			ID:               uuid.New(),
			ContractNumber:   "ADV-1",
			RemainingBalance: decimal.RequireFromString("400"),
			DueDate:          asOf.AddDate(0, 0, -40),
			Status:           advance.StatusDefaultWarning,
		},
	}, asOf), nil
}

func serve(gen report.AgingGenerator, target string) *httptest.ResponseRecorder {
	return serveIn(gen, target, time.UTC)
}

func serveIn(gen report.AgingGenerator, target string, loc *time.Location) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/reports", report.NewHandler(gen, loc).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestHandler_AgingJSON(t *testing.T) {
	rec := serve(generatorFunc(sampleReport), "/reports/aging?as_of=2026-06-15")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got aging.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Count)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, aging.Bucket31To60, got.Lines[0].Bucket)
}

func TestHandler_AgingXLSX(t *testing.T) {
	rec := serve(generatorFunc(sampleReport), "/reports/aging?as_of=2026-06-15&format=xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "aging-2026-06-15.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Advances")
}

func TestHandler_AgingAsOfOnReportCalendar(t *testing.T) {
	loc := time.FixedZone("CST", -6*60*60)

	var got time.Time

	gen := generatorFunc(func(ctx context.Context, asOf time.Time) (*aging.Report, error) {
		got = asOf
		return sampleReport(ctx, asOf)
	})

	rec := serveIn(gen, "/reports/aging?as_of=2026-06-15", loc)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, loc, got.Location())
	assert.Equal(t, "2026-06-15", got.In(loc).Format(time.DateOnly))
	assert.Equal(t, "2026-06-15", advance.LocalDate(got, loc).Format(time.DateOnly))
}

func TestHandler_AgingErrors(t *testing.T) {
	type testCase struct {
		name       string
		gen        generatorFunc
		target     string
		wantStatus int
	}

	tests := []testCase{
		{name: "bad date", gen: sampleReport, target: "/reports/aging?as_of=yesterday", wantStatus: http.StatusBadRequest},
		{name: "bad format", gen: sampleReport, target: "/reports/aging?format=pdf", wantStatus: http.StatusBadRequest},
		{
			name: "generator failure",
			gen: func(context.Context, time.Time) (*aging.Report, error) {
				return nil, assert.AnError
			},
			target:     "/reports/aging",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantStatus, serve(tc.gen, tc.target).Code)
		})
	}
}
