// Package metrics exposes Prometheus counters for the verification
// pipeline on a small standalone HTTP endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// SessionsStarted counts verification sessions created, per guild.
	SessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verify_sessions_started_total",
			Help: "Total number of verification sessions started",
		},
		[]string{"guild"},
	)

	// SessionOutcomes counts terminal session states.
	SessionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verify_session_outcomes_total",
			Help: "Total number of verification sessions by terminal outcome",
		},
		[]string{"guild", "outcome"},
	)

	// EvaluatorVerdicts counts evaluator results.
	EvaluatorVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verify_evaluator_verdicts_total",
			Help: "Total number of requirement evaluations by verdict",
		},
		[]string{"verdict"},
	)

	// ManualDispositions counts moderator actions on review entries.
	ManualDispositions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verify_manual_dispositions_total",
			Help: "Total number of manual-review dispositions by action",
		},
		[]string{"action"},
	)
)

// Server serves the metrics endpoint.
type Server struct {
	server *http.Server
}

// NewServer builds a metrics server on the given port with its own
// registry: bot metrics plus the default Go and process collectors.
func NewServer(port int) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		SessionsStarted,
		SessionOutcomes,
		EvaluatorVerdicts,
		ManualDispositions,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}
}

// Start serves in the background.
func (m *Server) Start() {
	go func() {
		logrus.Infof("metrics server listening on %s", m.server.Addr)
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("metrics server error: %v", err)
		}
	}()
}

// Shutdown stops the metrics server.
func (m *Server) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}
