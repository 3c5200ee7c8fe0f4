package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/goclosing/internal/adapter/http/handler"
	"github.com/iho/goclosing/internal/adapter/http/middleware"
	"github.com/iho/goclosing/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ClosureHandler *handler.ClosureHandler
	HealthHandler  *handler.HealthHandler
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	// TokenVerifier enables bearer authentication. When nil, identity is
	// taken from the X-Tenant-ID and X-Operator-ID headers.
	TokenVerifier middleware.TokenVerifier
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		} else {
			r.Use(middleware.HeaderIdentity)
		}

		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		r.Route("/closures", func(r chi.Router) {
			r.With(middleware.RequireDeclarer).Post("/", cfg.ClosureHandler.Declare)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireViewer)
				r.Get("/", cfg.ClosureHandler.List)
				r.Get("/id/{id}", cfg.ClosureHandler.GetByID)
				r.Get("/{businessDay}", cfg.ClosureHandler.Get)
			})
		})
	})

	return r
}
