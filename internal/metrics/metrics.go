// Package metrics exposes Prometheus collectors for the translator and the pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "legaltr"

type Metrics struct {
	registry *prometheus.Registry

	translateRequests *prometheus.CounterVec
	translateLatency  prometheus.Histogram
	translateRetries  prometheus.Counter
	cacheLookups      *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	jobs              *prometheus.CounterVec
	jobDuration       prometheus.Histogram
}

// New builds a private registry holding the Go/process collectors and ours.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		translateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translator",
			Name:      "requests_total",
			Help:      "Provider requests by outcome.",
		}, []string{"outcome"}),
		translateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "translator",
			Name:      "request_duration_seconds",
			Help:      "Provider request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		translateRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translator",
			Name:      "retries_total",
			Help:      "Provider requests retried after a transient failure.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translator",
			Name:      "cache_lookups_total",
			Help:      "Translation cache lookups by result.",
		}, []string{"result"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage", "outcome"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "jobs_total",
			Help:      "Finished pipeline runs by outcome.",
		}, []string{"outcome"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "job_duration_seconds",
			Help:      "End to end pipeline run duration.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.translateRequests,
		m.translateLatency,
		m.translateRetries,
		m.cacheLookups,
		m.stageDuration,
		m.jobs,
		m.jobDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// translator.Recorder

func (m *Metrics) ObserveRequest(outcome string, elapsed time.Duration) {
	m.translateRequests.WithLabelValues(outcome).Inc()
	m.translateLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRetry() { m.translateRetries.Inc() }

func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// pipeline.Observer

func (m *Metrics) ObserveStage(stage, outcome string, elapsed time.Duration) {
	m.stageDuration.WithLabelValues(stage, outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveJob(outcome string, elapsed time.Duration) {
	m.jobs.WithLabelValues(outcome).Inc()
	m.jobDuration.Observe(elapsed.Seconds())
}
