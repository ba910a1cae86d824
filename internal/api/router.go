package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/attune/internal/api/handlers"
	"github.com/felixgeelhaar/attune/internal/api/middleware"
)

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux        *http.ServeMux
	app        *App
	assessment *handlers.AssessmentHandler
	placement  *handlers.PlacementHandler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(app *App) http.Handler {
	var publisher handlers.EventPublisher
	if app.Producer != nil {
		publisher = app.Producer
	}

	r := &Router{
		mux:        http.NewServeMux(),
		app:        app,
		assessment: handlers.NewAssessmentHandler(app.Engine, app.Placements, publisher),
		placement:  handlers.NewPlacementHandler(app.Placements),
	}

	r.registerRoutes()

	return r.buildMiddlewareChain(r.mux, app)
}

func (r *Router) registerRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /ready", r.handleReady)

	// Assessments
	r.mux.HandleFunc("POST /api/v1/assessments", r.assessment.Start)
	r.mux.HandleFunc("POST /api/v1/assessments/turns", r.assessment.Turn)
	r.mux.HandleFunc("POST /api/v1/assessments/summary", r.assessment.Summary)

	// Placements
	r.mux.HandleFunc("GET /api/v1/placements/{learner_id}", r.placement.ListByLearner)
}

func (r *Router) buildMiddlewareChain(handler http.Handler, app *App) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.Recovery(handler)
	handler = middleware.Logger(handler)

	// Apply rate limiting (skip in debug mode for easier development)
	if !app.Config.Debug {
		handler = middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig())(handler)
	}

	handler = middleware.RequestID(handler)
	handler = middleware.CORS(handler)

	return handler
}

// Health check handlers
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	r.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleReady(w http.ResponseWriter, req *http.Request) {
	if err := r.app.Ready(req.Context()); err != nil {
		slog.Error("readiness check failed",
			"error", err,
			"request_id", middleware.GetRequestID(req.Context()),
		)
		r.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}

	r.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (r *Router) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
