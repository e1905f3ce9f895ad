package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cognifloe/control-plane/internal/api/handlers"
	"github.com/cognifloe/control-plane/internal/api/middleware"
	"github.com/cognifloe/control-plane/internal/config"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Identity)
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id", middleware.UserHeader},
		ExposedHeaders:   []string{"X-Request-Id", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.NewAPIKeyAuth(cfg.APIKeys).Middleware)

	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/tags", h.ListTags)
			r.Get("/templates", h.ListTemplates)
		})

		r.Post("/analysis", h.Analyze)
		r.Post("/analysis/insights", h.Insights)
		r.Post("/plan", h.Plan)

		r.Route("/ml", func(r chi.Router) {
			r.Post("/predict", h.Predict)
			r.Post("/detect-anomalies", h.DetectAnomalies)
			r.Get("/health", h.MLHealth)
			r.Get("/model-info", h.ModelInfo)
		})

		r.Route("/workflows", func(r chi.Router) {
			r.Get("/", h.ListWorkflows)
			r.Post("/", h.SaveWorkflow)
			r.Route("/{workflowId}", func(r chi.Router) {
				r.Get("/", h.GetWorkflow)
				r.Delete("/", h.DeleteWorkflow)
			})
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/telemetry", h.Telemetry)
			r.Post("/executions", h.LogExecution)
			r.Post("/runs/{workflowId}", h.RunWorkflow)
		})

		r.Get("/agents", h.ListAgents)
		r.Get("/predictions", h.ListPredictions)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "healthy",
		"service": "cognifloe-control-plane",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"version": cfg.Version,
			"service": "cognifloe-control-plane",
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
