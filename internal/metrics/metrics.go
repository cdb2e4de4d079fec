// Package metrics exposes Prometheus metrics and a health endpoint for the
// alert evaluation loop.
package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds all Prometheus metrics for the alert engine.
type Metrics struct {
	AlertsEvaluated *prometheus.CounterVec // labels: kind
	AlertsTriggered *prometheus.CounterVec // labels: kind
	AlertErrors     *prometheus.CounterVec // labels: kind
	FetchErrors     prometheus.Counter
	NotifyErrors    prometheus.Counter
	CycleDuration   prometheus.Histogram
	ActiveAlerts    prometheus.Gauge
}

// New registers and returns all metrics.
func New() *Metrics {
	m := &Metrics{
		AlertsEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwatch_alerts_evaluated_total",
			Help: "Alerts evaluated, by kind",
		}, []string{"kind"}),
		AlertsTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwatch_alerts_triggered_total",
			Help: "Alerts that fired and were claimed, by kind",
		}, []string{"kind"}),
		AlertErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwatch_alert_errors_total",
			Help: "Alert evaluations that ended in an error, by kind",
		}, []string{"kind"}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_fetch_errors_total",
			Help: "Market data fetches that failed or returned no data",
		}),
		NotifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_notify_errors_total",
			Help: "Notification deliveries that failed after retries",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockwatch_cycle_duration_seconds",
			Help:    "Wall time of one full evaluation cycle",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockwatch_active_alerts",
			Help: "Active alerts seen at the start of the last cycle",
		}),
	}
	prometheus.MustRegister(
		m.AlertsEvaluated,
		m.AlertsTriggered,
		m.AlertErrors,
		m.FetchErrors,
		m.NotifyErrors,
		m.CycleDuration,
		m.ActiveAlerts,
	)
	return m
}

// HealthStatus tracks component liveness for /healthz.
type HealthStatus struct {
	mu            sync.RWMutex
	storeOK       bool
	lastCycleTime time.Time
	lastCycleErr  string
}

func NewHealthStatus() *HealthStatus {
	return &HealthStatus{storeOK: true}
}

func (h *HealthStatus) SetStoreOK(v bool) {
	h.mu.Lock()
	h.storeOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) RecordCycle(at time.Time, err error) {
	h.mu.Lock()
	h.lastCycleTime = at
	if err != nil {
		h.lastCycleErr = err.Error()
	} else {
		h.lastCycleErr = ""
	}
	h.mu.Unlock()
}

func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	body := map[string]any{
		"store_ok":        h.storeOK,
		"last_cycle_time": h.lastCycleTime.UTC().Format(time.RFC3339),
		"last_cycle_err":  h.lastCycleErr,
	}
	healthy := h.storeOK
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(body)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	srv *http.Server
}

func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)
	return &Server{srv: &http.Server{Addr: addr, Handler: mux}}
}

func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			zap.L().Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	_ = s.srv.Shutdown(ctx)
}
