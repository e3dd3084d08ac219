// Package metrics exposes exchange counters and latencies in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hibot"

// Recorder collects exchange metrics on a private registry so tests and
// multiple instances never collide on the global default registerer.
type Recorder struct {
	registry   *prometheus.Registry
	exchanges  *prometheus.CounterVec
	failures   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with all collectors registered, plus the
// standard Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Exchanges that reached the backend, by input source and outcome.",
		}, []string{"source", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_failures_total",
			Help:      "Failed exchanges by error code.",
		}, []string{"code"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_rejections_total",
			Help:      "Submissions ignored before reaching the backend.",
		}, []string{"source", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exchange_duration_seconds",
			Help:      "Time from placeholder insertion to resolution.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
	}
	r.registry.MustRegister(
		r.exchanges,
		r.failures,
		r.rejections,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveExchange records one settled exchange. code is empty on success.
func (r *Recorder) ObserveExchange(source, outcome, code string, elapsed time.Duration) {
	r.exchanges.WithLabelValues(source, outcome).Inc()
	if code != "" {
		r.failures.WithLabelValues(code).Inc()
	}
	r.duration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveRejection records a submission dropped because of busy or empty input.
func (r *Recorder) ObserveRejection(source, reason string) {
	r.rejections.WithLabelValues(source, reason).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
