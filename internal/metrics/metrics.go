package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes recorded by the collector.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// Collector exposes Prometheus metrics for the profiler core.
type Collector struct {
	registry           *prometheus.Registry
	cacheLookups       *prometheus.CounterVec
	fetchDuration      prometheus.Histogram
	activitiesFetched  prometheus.Counter
	evaluationDuration *prometheus.HistogramVec
	malformedMetadata  *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sociograph",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Total number of cache policy resolutions by outcome.",
	}, []string{"outcome"})

	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sociograph",
		Subsystem: "fetch",
		Name:      "duration_seconds",
		Help:      "Latency distribution for fetch collaborator calls.",
		Buckets:   prometheus.DefBuckets,
	})

	activitiesFetched := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sociograph",
		Subsystem: "fetch",
		Name:      "activities_total",
		Help:      "Total number of activities produced by fetch cycles.",
	})

	evaluationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sociograph",
		Subsystem: "evaluate",
		Name:      "duration_seconds",
		Help:      "Latency distribution for analysis modules.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"module"})

	malformedMetadata := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sociograph",
		Subsystem: "evaluate",
		Name:      "malformed_metadata_total",
		Help:      "Activities excluded from a module for missing metadata keys.",
	}, []string{"module"})

	for _, c := range []prometheus.Collector{
		cacheLookups,
		fetchDuration,
		activitiesFetched,
		evaluationDuration,
		malformedMetadata,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:           registry,
		cacheLookups:       cacheLookups,
		fetchDuration:      fetchDuration,
		activitiesFetched:  activitiesFetched,
		evaluationDuration: evaluationDuration,
		malformedMetadata:  malformedMetadata,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCacheLookup records a cache policy resolution.
func (c *Collector) ObserveCacheLookup(outcome string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveFetch records one completed fetch cycle.
func (c *Collector) ObserveFetch(activityCount int, duration time.Duration) {
	if c == nil {
		return
	}
	c.fetchDuration.Observe(duration.Seconds())
	c.activitiesFetched.Add(float64(activityCount))
}

// ObserveEvaluation records the latency of one analysis module run.
func (c *Collector) ObserveEvaluation(module string, duration time.Duration) {
	if c == nil {
		return
	}
	c.evaluationDuration.WithLabelValues(module).Observe(duration.Seconds())
}

// ObserveMalformedMetadata records an activity excluded from a module
// because a required metadata key was missing.
func (c *Collector) ObserveMalformedMetadata(module string) {
	if c == nil {
		return
	}
	c.malformedMetadata.WithLabelValues(module).Inc()
}
