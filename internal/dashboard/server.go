package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/storage"
)

// Server exposes the read-only reporting API over the observation store.
// Every endpoint is a pure query; nothing here mutates state.
type Server struct {
	logger *zap.Logger
	store  storage.ObservationStore
	srv    *http.Server
}

// NewServer creates a dashboard server listening on the given port.
func NewServer(logger *zap.Logger, store storage.ObservationStore, port int) *Server {
	s := &Server{
		logger: logger.Named("dashboard"),
		store:  store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/metrics/current", s.handleCurrentMetrics)
	mux.HandleFunc("/api/metrics/history", s.handleMetricsHistory)
	mux.HandleFunc("/api/web/status", s.handleWebStatus)
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/uptime", s.handleUptime)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	return s
}

// Start serves the API until Shutdown is called.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Dashboard listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Dashboard server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the route handler for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleCurrentMetrics(w http.ResponseWriter, r *http.Request) {
	sample, err := s.store.LatestSample(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, sample)
}

func (s *Server) handleMetricsHistory(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	samples, err := s.store.SampleHistory(r.Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, samples)
}

func (s *Server) handleWebStatus(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.LatestProbeStatus(r.Context(), time.Now().Add(-time.Hour))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, results)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	alerts, err := s.store.RecentAlerts(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, alerts)
}

func (s *Server) handleUptime(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	stats, err := s.store.UptimeStats(r.Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, stats)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

// writeError hides internal fault detail from dashboard clients.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Warn("Dashboard query failed", zap.Error(err))
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
