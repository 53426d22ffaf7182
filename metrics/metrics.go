// Package metrics exposes Prometheus metrics for the attestation agent.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for delegation outcomes.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultInvalid = "invalid"
	ResultConfig  = "config_error"
)

// Recorder counts attestation and schema outcomes. A nil Recorder is valid
// and records nothing.
type Recorder struct {
	attestations *prometheus.CounterVec
	schemas      *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		attestations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attestations_total",
			Help:      "Attestation requests by result.",
		}, []string{"result"}),
		schemas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schemas_total",
			Help:      "Schema creation requests by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delegation_duration_seconds",
			Help:      "Time spent waiting for the attestation protocol.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{r.attestations, r.schemas, r.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Attestation records the result of one attestation request.
func (r *Recorder) Attestation(result string) {
	if r == nil {
		return
	}
	r.attestations.WithLabelValues(result).Inc()
}

// Schema records the result of one schema creation request.
func (r *Recorder) Schema(result string) {
	if r == nil {
		return
	}
	r.schemas.WithLabelValues(result).Inc()
}

// ObserveDelegation records how long a call to the protocol client took.
func (r *Recorder) ObserveDelegation(operation string, started time.Time) {
	if r == nil {
		return
	}
	r.latency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// MetricsServer serves /metrics on its own listener.
type MetricsServer struct {
	srv      *http.Server
	registry *prometheus.Registry
	Recorder *Recorder
}

// New creates a metrics server with a fresh registry holding the Go runtime
// collectors and the agent's Recorder.
func New(namespace, addr string) (*MetricsServer, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	recorder, err := NewRecorder(namespace, reg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		registry: reg,
		Recorder: recorder,
	}, nil
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
