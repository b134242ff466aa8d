package routes

import (
	"net/http"

	"multipark/backoffice/internal/api"
	"multipark/backoffice/internal/auth"
	"multipark/backoffice/internal/config"
	"multipark/backoffice/internal/logging"
	"multipark/backoffice/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes builds the HTTP handler. gatherer backs /metrics.
func RegisterRoutes(cfg *config.Config, deps *api.Dependencies, gatherer prometheus.Gatherer) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	if deps.Services.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(deps.Services.Metrics))
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	handlers := api.NewHandlers(deps)

	// public
	r.Get("/healthCheck", handlers.HealthCheckHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	var keys middleware.KeyLookup
	if deps.Repo.Keys != nil {
		keys = deps.Repo.Keys
	}
	RegisterAPIRoutes(r, handlers, middleware.AuthMiddleware(cfg.Auth, keys, auth.NewTokenSigner(cfg.Auth.JWTSecret)))

	logging.Info("Router initialized", "cors_origins", allowedOrigins)
	return r
}
