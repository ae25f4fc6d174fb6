package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", s.handleHealth)

		// System metrics for basic monitoring
		r.Get("/metrics", s.handleMetrics)

		// Device universes: instruments and bluetooth share the same
		// snapshot/scan/connect surface; pairing is bluetooth-only and
		// the handlers reject it for universes without pair commands.
		r.Route("/devices/{universe}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Post("/scan", s.handleScan)
			r.Get("/paired", s.handlePairedList)
			r.Post("/paired/refresh", s.handleRefreshPaired)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Post("/connect", s.handleConnect)
				r.Post("/disconnect", s.handleDisconnect)
				r.Post("/pair", s.handlePair)
				r.Post("/forget", s.handleForget)
			})
		})

		// Device profile endpoints (aliases, auto-connect flags)
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", s.handleListProfiles)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProfile)
				r.Put("/", s.handleSaveProfile)
				r.Delete("/", s.handleDeleteProfile)
			})
		})

		// WebSocket event relay
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
