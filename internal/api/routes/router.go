package routes

import (
	"net/http"

	"github.com/zatekoja/notification-orchestrator/internal/api/handlers"
	"github.com/zatekoja/notification-orchestrator/internal/api/middleware"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	eventHandler      *handlers.EventHandler
	preferenceHandler *handlers.PreferenceHandler
	healthHandler     *handlers.HealthHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	eventHandler *handlers.EventHandler,
	preferenceHandler *handlers.PreferenceHandler,
	healthHandler *handlers.HealthHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		eventHandler:      eventHandler,
		preferenceHandler: preferenceHandler,
		healthHandler:     healthHandler,
		allowedOrigins:    allowedOrigins,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Probes
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)

	// Event ingestion
	r.mux.HandleFunc("POST /events", r.eventHandler.IngestEvent)

	// Preference management
	r.mux.HandleFunc("GET /preferences/{userId}", r.preferenceHandler.GetPreferences)
	r.mux.HandleFunc("POST /preferences/{userId}", r.preferenceHandler.SetPreferences)
	r.mux.HandleFunc("PUT /preferences/{userId}", r.preferenceHandler.UpdatePreferences)
	r.mux.HandleFunc("DELETE /preferences/{userId}", r.preferenceHandler.DeletePreferences)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.Recovery(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics, r.mux)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.RequestID(handler)
	// CORS wraps everything so preflight requests short-circuit early
	handler = middleware.CORS(r.allowedOrigins)(handler)

	return handler
}
