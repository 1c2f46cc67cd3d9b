package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Read API (public)
	r.Get("/api/phase", h.handleGetPhase)
	r.Get("/api/competitions", h.handleGetCompetitions)
	r.Get("/api/competitions/current", h.handleGetCurrentCompetitions)
	r.Get("/api/competitions/{index}/tally", h.handleGetTally)
	r.Get("/api/results", h.handleGetResults)
	r.Get("/api/results/qr", h.handleGetResultsQR)
	r.Get("/api/export", h.handleGetExport)

	// Platform event ingestion (public; the bridge posts here)
	r.Post("/api/events/submission", h.handleSubmissionEvent)
	r.Post("/api/events/withdrawal", h.handleWithdrawalEvent)
	r.Post("/api/events/reaction", h.handleReactionEvent)
	r.Post("/api/events/ballot", h.handleBallotEvent)

	// Auth routes (public)
	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		r.Get("/api/admin/contest", h.handleAdminContest)
		r.Post("/api/admin/tick", h.handleAdminTick)
		r.Post("/api/admin/bind-message", h.handleAdminBindMessage)
	})

	return r
}
