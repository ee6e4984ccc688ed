// Package metrics exposes prometheus counters for the order feed engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes recorded by Recorder.Fetch.
const (
	OutcomeLoaded     = "loaded"
	OutcomeSoftFail   = "soft_fail"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
	OutcomeConfig     = "config_error"
)

// Recorder owns a private registry so tests can create as many as they like.
type Recorder struct {
	registry      *prometheus.Registry
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	detailTotal   *prometheus.CounterVec
	registerTotal *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderfeed_list_fetch_total",
			Help: "List fetches by domain and outcome.",
		}, []string{"domain", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orderfeed_list_fetch_duration_seconds",
			Help:    "Latency of list fetches against the order backend.",
			Buckets: prometheus.DefBuckets,
		}, []string{"domain"}),
		detailTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderfeed_detail_fetch_total",
			Help: "Detail fetches by domain and outcome.",
		}, []string{"domain", "outcome"}),
		registerTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderfeed_push_registration_total",
			Help: "Push token registrations by outcome.",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(r.fetchTotal, r.fetchDuration, r.detailTotal, r.registerTotal)
	return r
}

func (r *Recorder) Fetch(domain, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.fetchTotal.WithLabelValues(domain, outcome).Inc()
	if elapsed > 0 {
		r.fetchDuration.WithLabelValues(domain).Observe(elapsed.Seconds())
	}
}

func (r *Recorder) Detail(domain, outcome string) {
	if r == nil {
		return
	}
	r.detailTotal.WithLabelValues(domain, outcome).Inc()
}

func (r *Recorder) Registration(outcome string) {
	if r == nil {
		return
	}
	r.registerTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
