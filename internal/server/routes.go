package server

import (
	"log/slog"
	"net/http"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /v1/videos/generations", h.Generate)
	mux.HandleFunc("GET /v1/videos/generations", h.ListGenerations)
	mux.HandleFunc("GET /v1/videos/generations/{id}", h.GetGeneration)
	mux.HandleFunc("GET /v1/videos/generations/{id}/events", h.StreamGeneration)
	mux.HandleFunc("DELETE /v1/videos/generations/{id}", h.DeleteGeneration)

	mux.HandleFunc("GET /v1/videos/models", h.ListModels)

	mux.HandleFunc("GET /v1/providers/keys", h.GetProviderKeys)
	mux.HandleFunc("PUT /v1/providers/keys", h.PutProviderKeys)

	// Apply middleware chain
	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
