package collection

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/harvest/internal/advance"
	"github.com/MrJamesThe3rd/harvest/internal/collection"
	"github.com/MrJamesThe3rd/harvest/internal/job"
)

type DailyRunner interface {
	RunDaily(ctx context.Context, asOf time.Time) (*job.Report, error)
}

type TargetLister interface {
	Targets(ctx context.Context, asOf time.Time) ([]collection.Target, error)
}

type RunReader interface {
	LatestRun(ctx context.Context) (*collection.RunSummary, error)
}

type Handler struct {
	runner  DailyRunner
	targets TargetLister
	runs    RunReader
	loc     *time.Location
}

func NewHandler(runner DailyRunner, targets TargetLister, runs RunReader, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}

	return &Handler{runner: runner, targets: targets, runs: runs, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/run", h.run)
	r.Get("/runs/latest", h.latestRun)
	r.Get("/targets", h.listTargets)
	r.Get("/late-fee", h.lateFee)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	report, err := h.runner.RunDaily(r.Context(), asOf)
	if err != nil {
		if errors.Is(err, job.ErrRunInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		slog.Error("collection run failed", "module", "http", "operation", "run_daily", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) latestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.LatestRun(r.Context())
	if err != nil {
		slog.Error("failed to load latest run", "module", "http", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if run == nil {
		http.Error(w, "no collection run recorded", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

type targetsResponse struct {
	Date    string              `json:"date"`
	Count   int                 `json:"count"`
	Targets []collection.Target `json:"targets"`
}

func (h *Handler) listTargets(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	targets, err := h.targets.Targets(r.Context(), asOf)
	if err != nil {
		slog.Error("failed to select targets", "module", "http", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, targetsResponse{
		Date:    asOf.In(h.loc).Format(time.DateOnly),
		Count:   len(targets),
		Targets: targets,
	})
}

// lateFee previews the fee for ?amount=&days_overdue= without touching any advance.
func (h *Handler) lateFee(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil || amount.IsNegative() {
		http.Error(w, "amount must be a non-negative decimal", http.StatusBadRequest)
		return
	}

	days, err := strconv.Atoi(r.URL.Query().Get("days_overdue"))
	if err != nil {
		http.Error(w, "days_overdue must be an integer", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, advance.CalculateLateFee(amount, days))
}

// parseDate reads ?date=YYYY-MM-DD in the collections timezone, defaulting to now.
func (h *Handler) parseDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return time.Now().In(h.loc), true
	}

	t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, false
	}

	return t, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
