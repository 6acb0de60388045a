// Package metrics provides Prometheus-based metrics for audits and storage.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the service's collectors on a private registry so several
// instances (tests, CLI) never collide on registration.
type Recorder struct {
	registry         *prometheus.Registry
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	mutationsTotal   *prometheus.CounterVec
	storeErrorsTotal *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insightcart_analyses_total",
				Help: "Total number of audit requests by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insightcart_analysis_duration_seconds",
				Help:    "Duration of audit requests to the AI model in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"mode"},
		),
		mutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insightcart_workspace_mutations_total",
				Help: "Workspace mutations by operation and result",
			},
			[]string{"op", "result"},
		),
		storeErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insightcart_store_errors_total",
				Help: "Persistence failures by key",
			},
			[]string{"key"},
		),
	}
	r.registry.MustRegister(r.analysesTotal, r.analysisDuration, r.mutationsTotal, r.storeErrorsTotal)
	return r
}

// ObserveAnalysis records one completed audit call.
func (r *Recorder) ObserveAnalysis(mode, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.analysesTotal.WithLabelValues(mode, outcome).Inc()
	r.analysisDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (r *Recorder) ObserveMutation(op string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	r.mutationsTotal.WithLabelValues(op, result).Inc()
}

func (r *Recorder) ObserveStoreError(key string) {
	if r == nil {
		return
	}
	r.storeErrorsTotal.WithLabelValues(key).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
