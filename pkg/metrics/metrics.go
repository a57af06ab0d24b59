// Package metrics provides the Prometheus registry and HTTP handler for the
// fragment cache. Metrics are defined in their own packages (fragment, cache)
// and registered there via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the fragment cache.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the registered metrics.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Service Metrics (pkg/fragment):
//   - fragment_cache_hits_total (Counter): RememberHTML calls served from the store
//   - fragment_cache_misses_total (Counter): RememberHTML calls that rendered and stored
//   - fragment_cache_bypass_total{reason} (Counter): Renders without cache (disabled, no_identifier, no_store)
//   - fragment_cache_builds_total (Counter): Builder invocations
//   - fragment_cache_build_duration_seconds (Histogram): Builder latency
//   - fragment_cache_backend_errors_total{store, operation} (Counter): Store failures seen by the service
//
// Store Metrics (pkg/cache):
//   - fragment_store_hits_total{backend} (Counter): Store hits by backend
//   - fragment_store_misses_total{backend} (Counter): Store misses by backend
//   - fragment_store_writes_total{backend} (Counter): Fragments written by backend
//   - fragment_store_errors_total{backend, operation} (Counter): Store operation errors
//
// Example Prometheus Queries:
//
//   # Fragment Hit Rate
//   sum(rate(fragment_cache_hits_total[5m])) /
//   (sum(rate(fragment_cache_hits_total[5m])) + sum(rate(fragment_cache_misses_total[5m])))
//
//   # Renders Skipping The Cache
//   sum by (reason) (rate(fragment_cache_bypass_total[5m]))
//
//   # Degraded Renders
//   rate(fragment_cache_backend_errors_total{operation=~"get|set|remember"}[5m])
//
//   # P95 Build Latency
//   histogram_quantile(0.95, rate(fragment_cache_build_duration_seconds_bucket[5m]))
