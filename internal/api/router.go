package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
//
// Stop, status, and health are deliberately outside the auth group: an
// operator at the installation must always be able to stop it and see what
// it is doing, token or not.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Safety and observability (no auth required)
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Post("/stop", s.handleStop)

		// Auth endpoint (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Preset listing is read-only and harmless.
		r.Get("/presets", s.handleListPresets)

		// Real-time status stream (read-only).
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/presets/{name}", func(r chi.Router) {
				r.Post("/apply", s.handleApplyPreset)
				r.Put("/", s.handleSavePreset)
				r.Delete("/", s.handleDeletePreset)
			})

			r.Post("/script", s.handleLoadScript)
			r.Get("/sessions", s.handleListSessions)
		})
	})

	return r
}
