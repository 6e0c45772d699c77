package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/gestobra/internal/http/auth"
	"github.com/MrJamesThe3rd/gestobra/internal/http/document"
	"github.com/MrJamesThe3rd/gestobra/internal/http/importcsv"
	"github.com/MrJamesThe3rd/gestobra/internal/http/matching"
	"github.com/MrJamesThe3rd/gestobra/internal/http/material"
	"github.com/MrJamesThe3rd/gestobra/internal/http/project"
	"github.com/MrJamesThe3rd/gestobra/internal/http/report"
	"github.com/MrJamesThe3rd/gestobra/internal/http/schema"
	"github.com/MrJamesThe3rd/gestobra/internal/http/transaction"
)

type Handlers struct {
	Projects     *project.Handler
	Transactions *transaction.Handler
	Documents    *document.Handler
	Materials    *material.Handler
	Reports      *report.Handler
	Import       *importcsv.Handler
	Rules        *matching.Handler
	Schema       *schema.Handler
}

type Options struct {
	AllowedOrigins []string
	// JWTSecret enables bearer authentication on /api/v1 when set.
	JWTSecret string
	// Metrics is exposed on /metrics when set.
	Metrics prometheus.Gatherer
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	})

	if opts.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(auth.Middleware([]byte(opts.JWTSecret)))
		}

		r.Route("/projects", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Projects.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/materials", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Materials.Routes(r)
		})

		r.Route("/category-rules", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Rules.Routes(r)
		})

		r.Route("/documents", h.Documents.Routes)
		r.Route("/import", h.Import.Routes)
		r.Route("/reports", h.Reports.Routes)
		r.Route("/schema", h.Schema.Routes)
	})

	return router
}
