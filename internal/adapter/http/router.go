package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lfmartins/contas/internal/adapter/http/handler"
	"github.com/lfmartins/contas/internal/adapter/http/middleware"
	"github.com/lfmartins/contas/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	CardHandler      *handler.CardHandler
	EntryHandler     *handler.EntryHandler
	SeriesHandler    *handler.SeriesHandler
	GoalHandler      *handler.GoalHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/balance/recompute", cfg.AccountHandler.RecomputeBalance)
			r.Put("/{id}/balance", cfg.AccountHandler.AdjustBalance)
		})

		// Cards and bills
		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cfg.CardHandler.Create)
			r.Get("/", cfg.CardHandler.List)
			r.Get("/{id}", cfg.CardHandler.Get)
			r.Get("/{id}/limit", cfg.CardHandler.AvailableLimit)
			r.Get("/{id}/bills/{period}", cfg.CardHandler.GetBill)
			r.Post("/{id}/bills/{period}/pay", cfg.CardHandler.PayBill)
		})

		// Entries
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Patch("/{id}", cfg.EntryHandler.Update)
			r.Patch("/{id}/status", cfg.EntryHandler.UpdateStatus)
			r.Delete("/{id}", cfg.EntryHandler.Delete)
			r.Post("/{id}/anticipate", cfg.EntryHandler.Anticipate)
		})

		// Series
		r.Route("/series", func(r chi.Router) {
			r.Post("/", cfg.SeriesHandler.Expand)
			r.Post("/{id}/move", cfg.SeriesHandler.Move)
			r.Post("/{id}/truncate", cfg.SeriesHandler.Truncate)
		})

		// Goals
		r.Route("/goals", func(r chi.Router) {
			r.Post("/", cfg.GoalHandler.Create)
			r.Get("/", cfg.GoalHandler.List)
			r.Get("/progress", cfg.GoalHandler.Progress)
			r.Post("/{id}/recompute", cfg.GoalHandler.Recompute)
		})
	})

	return r
}
