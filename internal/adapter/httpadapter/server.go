// Package httpadapter serves the dashboard over HTTP: health and metrics
// probes, session commands, reference listings and chart documents.
package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/congress-dashboard/internal/dashboard"
	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service is the dashboard behind the HTTP routes.
type Service interface {
	CheckReadiness(ctx context.Context) error

	NewSession() string
	CloseSession(id string) error
	View(id string) (render.MapFrame, error)
	Click(ctx context.Context, id, featureID string) (render.MapFrame, error)
	ClickAt(ctx context.Context, id string, p domain.GeoPoint) (render.MapFrame, error)
	Reset(ctx context.Context, id string) (render.MapFrame, error)
	BackToState(ctx context.Context, id string) (render.MapFrame, error)
	Profile(ctx context.Context, id string) (dashboard.Profile, error)

	States() []dashboard.StateSummary
	Districts(abbr string) ([]dashboard.DistrictSummary, error)
	Radar(ctx context.Context, bioguideID string, mode domain.ProportionMode) (domain.RadarDataset, error)
	Topics(ctx context.Context) ([]string, error)
	TopicCounts(ctx context.Context, topic string) (domain.TopicCounts, error)
	Sankey(ctx context.Context, state string) (domain.SankeyGraph, error)
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        Service
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the probe, API and chart routes.
func NewServer(addr string, svc Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleCloseSession)
	mux.HandleFunc("GET /api/sessions/{id}/view", s.handleView)
	mux.HandleFunc("POST /api/sessions/{id}/click", s.handleClick)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("POST /api/sessions/{id}/back", s.handleBack)
	mux.HandleFunc("GET /api/sessions/{id}/members", s.handleMembers)

	mux.HandleFunc("GET /api/states", s.handleStates)
	mux.HandleFunc("GET /api/states/{abbr}/districts", s.handleDistricts)
	mux.HandleFunc("GET /api/radar/{bioguide}", s.handleRadar)
	mux.HandleFunc("GET /api/ideology/topics", s.handleTopics)
	mux.HandleFunc("GET /api/ideology/topics/{topic}", s.handleTopicCounts)

	mux.HandleFunc("GET /charts/radar/{bioguide}", s.handleRadarChart)
	mux.HandleFunc("GET /charts/ideology/{topic}", s.handleTopicChart)
	mux.HandleFunc("GET /charts/sankey/{state}", s.handleSankeyChart)

	s.httpServer.Handler = accessLog(mux, logger)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := svc.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
