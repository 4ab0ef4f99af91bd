// Package metrics instruments the background fetch pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// A Recorder collects fetch pipeline metrics on a private registry. A nil
// Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	dropped       prometheus.Counter
	rateLimited   prometheus.Counter
}

// NewRecorder returns a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schugaa",
			Name:      "fetches_total",
			Help:      "Fetch cycles by outcome.",
		}, []string{"outcome"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "schugaa",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of full fetch cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "schugaa",
			Name:      "results_dropped_total",
			Help:      "Results dropped because the consumer queue was full.",
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "schugaa",
			Name:      "rate_limited_total",
			Help:      "Fetch cycles rejected by API throttling.",
		}),
	}
}

// ObserveFetch records one fetch cycle.
func (r *Recorder) ObserveFetch(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(outcome).Inc()
	r.fetchDuration.Observe(d.Seconds())
}

// IncDropped records a result dropped on delivery.
func (r *Recorder) IncDropped() {
	if r == nil {
		return
	}
	r.dropped.Inc()
}

// IncRateLimited records a throttled fetch cycle.
func (r *Recorder) IncRateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}

// Handler exposes the registry over HTTP.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
