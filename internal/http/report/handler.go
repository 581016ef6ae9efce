package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/harvest/internal/aging"
)

type AgingGenerator interface {
	Generate(ctx context.Context, asOf time.Time) (*aging.Report, error)
}

type Handler struct {
	aging AgingGenerator
	loc   *time.Location
}

// NewHandler reads ?as_of dates on the calendar of loc.
func NewHandler(gen AgingGenerator, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}

	return &Handler{aging: gen, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/aging", h.agingReport)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// agingReport serves JSON by default and a workbook for ?format=xlsx.
func (h *Handler) agingReport(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().In(h.loc)

	if s := r.URL.Query().Get("as_of"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, h.loc)
		if err != nil {
			http.Error(w, "as_of must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		asOf = t
	}

	report, err := h.aging.Generate(r.Context(), asOf)
	if err != nil {
		slog.Error("failed to generate aging report", "module", "http", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(report); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="aging-%s.xlsx"`, report.AsOf.Format(time.DateOnly)))

		if err := aging.WriteXLSX(w, report); err != nil {
			slog.Error("failed to write aging workbook", "error", err)
		}
	default:
		http.Error(w, "format must be json or xlsx", http.StatusBadRequest)
	}
}
