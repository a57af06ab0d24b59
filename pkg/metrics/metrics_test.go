package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sternrassler/html-fragment-cache/pkg/cache"
	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestHandler_ExposesFragmentMetrics(t *testing.T) {
	// Touch the vectors so they have at least one series
	fragment.CacheHits.Add(0)
	fragment.CacheBypass.WithLabelValues("disabled").Add(0)
	cache.StoreHits.WithLabelValues("memory").Add(0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	for _, name := range []string{
		"fragment_cache_hits_total",
		"fragment_cache_bypass_total",
		"fragment_store_hits_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
