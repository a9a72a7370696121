package api

import (
	"database/sql"
	"net/http"

	"github.com/familyscout/familyscout/internal/database"
	"log/slog"
)

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, db *sql.DB, handler *Handler, metricsHandler http.Handler, logger *slog.Logger) {
	mux.HandleFunc("/api/events", handler.GetEventsHandler)
	mux.HandleFunc("/api/sources", handler.GetSourcesHandler)
	mux.HandleFunc("/api/status", handler.GetStatusHandler)
	mux.HandleFunc("/api/runs", handler.HandleRuns)
	mux.HandleFunc("/api/runs/latest", handler.GetLatestRunHandler)

	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(r.Context(), db); err != nil {
			logger.Error("health check failed", "error", err)
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// CORS preflight
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	})
}
