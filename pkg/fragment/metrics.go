package fragment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts RememberHTML calls served from the store
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragment_cache_hits_total",
			Help: "Total number of fragment cache hits",
		},
	)

	// CacheMisses counts RememberHTML calls that rendered and stored
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragment_cache_misses_total",
			Help: "Total number of fragment cache misses",
		},
	)

	// CacheBypass counts calls that skipped the store entirely
	CacheBypass = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragment_cache_bypass_total",
			Help: "Total number of renders that bypassed the fragment cache",
		},
		[]string{"reason"}, // "disabled", "no_identifier", "no_store"
	)

	// Builds counts builder invocations
	Builds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragment_cache_builds_total",
			Help: "Total number of fragment builder invocations",
		},
	)

	// BuildDuration tracks builder latency
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fragment_cache_build_duration_seconds",
			Help:    "Fragment builder duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BackendErrors tracks store failures seen by the service
	BackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragment_cache_backend_errors_total",
			Help: "Total number of fragment cache backend errors",
		},
		[]string{"store", "operation"}, // "get", "set", "remember", "forget", "flush"
	)
)
