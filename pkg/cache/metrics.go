package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreHits tracks store reads that found a live entry
	StoreHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragment_store_hits_total",
			Help: "Total number of fragment store hits",
		},
		[]string{"backend"}, // "redis", "memory"
	)

	// StoreMisses tracks store reads that found nothing
	StoreMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragment_store_misses_total",
			Help: "Total number of fragment store misses",
		},
		[]string{"backend"},
	)

	// StoreWrites tracks fragments written to a store
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragment_store_writes_total",
			Help: "Total number of fragments written",
		},
		[]string{"backend"},
	)

	// StoreErrors tracks store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragment_store_errors_total",
			Help: "Total number of fragment store operation errors",
		},
		[]string{"backend", "operation"}, // "get", "set", "delete", "flush"
	)
)
