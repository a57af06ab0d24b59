// Package cache provides the key-value stores behind the fragment cache.
//
// Two backends are available:
//
// - Manager stores fragments in Redis with native TTLs
// - MemoryStore keeps fragments in process using sturdyc
//
// Both implement Store and Rememberer, so concurrent misses for the same key
// share one computation.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Build the storage key
//	key := cache.Key("customer:123", "widget", "v1") // widget:customer:123:v1
//
//	// Get from cache
//	html, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - render the fragment
//	}
//
// # Named Stores
//
//	stores := cache.NewRegistry()
//	stores.Register("default", manager)
//	stores.Register("local", memoryStore)
//
// # Metrics
//
// The stores export Prometheus metrics:
//
//   - fragment_store_hits_total{backend} - Store hits
//   - fragment_store_misses_total{backend} - Store misses
//   - fragment_store_writes_total{backend} - Fragments written
//   - fragment_store_errors_total{backend,operation} - Store operation errors
//
// # Flushing
//
// Flush empties the whole backend. For Redis this is FLUSHDB on the
// configured database, so point the fragment cache at a dedicated database
// when other data lives in the same Redis.
package cache
