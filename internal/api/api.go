package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stockanalyzer/pkg/stockanalyzer"
)

// RouterOptions wires the analysis core and the optional generation
// capability into the HTTP surface.
type RouterOptions struct {
	Core      *stockanalyzer.Core
	Generator *stockanalyzer.ModelGenerator
	Logger    *slog.Logger
}

// NewRouter builds the HTTP API router.
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recoveryLoggingMiddleware(opts.Logger))
	r.Use(requestLoggingMiddleware(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{core: opts.Core, gen: opts.Generator}

	r.Get("/api/health", h.health)

	// Analysis
	r.Post("/api/analyze", h.analyze)
	r.Get("/api/showcase", h.showcase)
	r.Get("/api/history/{ticker}", h.history)

	// Generation capability
	r.Get("/api/generator/status", h.generatorStatus)

	// Settings
	r.Get("/api/settings", h.getSettings)
	r.Put("/api/settings", h.putSettings)

	return r
}

type handler struct {
	core *stockanalyzer.Core
	gen  *stockanalyzer.ModelGenerator
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
