package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spherical/legal-simplifier/cmd/legal-simplifier/handlers"
	"github.com/spherical/legal-simplifier/cmd/legal-simplifier/middleware"
	"github.com/spherical/legal-simplifier/internal/config"
	"github.com/spherical/legal-simplifier/internal/observability"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, session handlers.Session) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": cfg.Observability.ServiceName,
		})
	})

	sessionHandler := handlers.NewSessionHandler(logger, session, cfg.Server.MaxUploadBytes)

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", sessionHandler.Get)
		r.Put("/document", sessionHandler.SetDocument)
		r.Post("/document/upload", sessionHandler.Upload)
		r.Post("/simplify", sessionHandler.Simplify)
		r.Put("/question", sessionHandler.SetQuestion)
		r.Post("/ask", sessionHandler.Ask)
	})

	return r
}
