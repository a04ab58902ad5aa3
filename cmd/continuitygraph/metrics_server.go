package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"continuitygraph/config"
	"continuitygraph/internal/logger"
)

// queueDepther reports the number of pending snapshots.
type queueDepther interface {
	Depth(ctx context.Context) (int64, error)
}

type metricsServer struct {
	srv *http.Server
}

func newMetricsServer(cfg config.MetricsConfig, queue queueDepther) *metricsServer {
	return &metricsServer{srv: &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMetricsRouter(cfg.Path, queue),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

func newMetricsRouter(path string, queue queueDepther) http.Handler {
	if path == "" {
		path = "/metrics"
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle(path, promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if queue == nil {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		depth, err := queue.Depth(ctx)
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "unavailable", "error": err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "queue_depth": depth})
	})
	return r
}

func (m *metricsServer) Start() {
	go func() {
		logger.Infof("Metrics server listening on %s", m.srv.Addr)
		if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics server error: %v", err)
		}
	}()
}

func (m *metricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
