package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridianfarm/bloomwatch/internal/database"
	"github.com/meridianfarm/bloomwatch/internal/engine"
	"github.com/meridianfarm/bloomwatch/internal/handler"
	"github.com/meridianfarm/bloomwatch/internal/metrics"
	"github.com/meridianfarm/bloomwatch/internal/repository"
	"github.com/meridianfarm/bloomwatch/internal/worker"
)

// Config holds the HTTP surface configuration.
type Config struct {
	Port        int
	APIKey      string
	ServiceName string
	Version     string
	RasterDir   string
}

// Server exposes the engine's output to the dashboard collaborator. It is a
// read-mostly reporting surface plus a manual run trigger; all engine work
// happens in the scheduled job.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(cfg Config, dbPool database.Pool, events repository.Event, alerts repository.Alert, pool *worker.Pool, job *engine.RunJob) *Server {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))
	r.Get("/version", handler.HandleVersion(cfg.ServiceName, cfg.Version))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(cfg.APIKey))

		r.Get("/events", handler.HandleListEvents(events))
		r.Get("/alerts", handler.HandleListAlerts(alerts))
		r.Get("/catalog", handler.HandleCatalog(cfg.RasterDir))
		r.Get("/runs/last", handler.HandleLastRun(job))
		r.Post("/run", handler.HandleTriggerRun(pool, job))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	slog.Default().Info("HTTP server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// apiKeyMiddleware guards the API routes with a constant-time key check.
func apiKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Default().Debug("Request handled",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
