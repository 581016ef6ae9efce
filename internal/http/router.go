package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/harvest/internal/http/advance"
	"github.com/MrJamesThe3rd/harvest/internal/http/auth"
	"github.com/MrJamesThe3rd/harvest/internal/http/collection"
	"github.com/MrJamesThe3rd/harvest/internal/http/matching"
	"github.com/MrJamesThe3rd/harvest/internal/http/report"
	"github.com/MrJamesThe3rd/harvest/internal/http/statement"
	"github.com/MrJamesThe3rd/harvest/internal/http/webhook"
)

type Options struct {
	CORSOrigins []string
	JWTSecret   string
}

type Handlers struct {
	Advances    *advance.Handler
	Collections *collection.Handler
	Reports     *report.Handler
	Webhooks    *webhook.Handler
	Statements  *statement.Handler
	Matching    *matching.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		// Providers authenticate by their own means, not operator tokens.
		r.Route("/webhooks", h.Webhooks.Routes)

		r.Group(func(r chi.Router) {
			r.Use(auth.Actor(opts.JWTSecret))

			r.Route("/advances", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Advances.Routes(r)
			})

			r.Route("/collections", h.Collections.Routes)
			r.Route("/reports", h.Reports.Routes)
			r.Route("/statements", h.Statements.Routes)
			r.Route("/matching", h.Matching.Routes)
		})
	})

	return router
}
