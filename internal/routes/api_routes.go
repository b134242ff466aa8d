package routes

import (
	"net/http"

	"multipark/backoffice/internal/api"
	"multipark/backoffice/internal/middleware"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, authMiddleware func(http.Handler) http.Handler) {
	// One manual sync per ten seconds per client, burst of two
	syncLimiter := middleware.NewRateLimiter(rate.Limit(0.1), 2)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(authMiddleware) // all routes must be authenticated

		v1.Get("/reservations", handlers.ListReservations())
		v1.Get("/reservations/{id}", handlers.GetReservation())
		v1.Get("/sync/status", handlers.GetSyncStatus())
		v1.Get("/sync/logs", handlers.GetSyncLogs())

		// Service-only group
		v1.Group(func(service chi.Router) {
			service.Use(middleware.RequireService)

			service.Patch("/reservations/{id}", handlers.PatchReservation())
			service.With(syncLimiter.Middleware).Post("/sync/run", handlers.TriggerSync())
		})
	})
}
