package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNilStore is returned when registering a nil store.
	ErrNilStore = errors.New("store cannot be nil")
)

// Store is the key-value backend holding rendered fragments.
// Implementations own expiry: an entry is never returned after its TTL.
type Store interface {
	// Get returns the stored bytes or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value for ttl. A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Flush removes every entry of the store, including entries that were
	// not written by the fragment cache.
	Flush(ctx context.Context) error
}

// FetchFn computes a value on cache miss.
type FetchFn func(ctx context.Context) ([]byte, error)

// Rememberer is implemented by stores offering an atomic "get, or compute
// and store" round trip. Concurrent callers for the same key share a single
// fetch. Errors returned by fetch are returned unchanged. A failed write after
// a successful fetch still returns the fetched value.
type Rememberer interface {
	Remember(ctx context.Context, key string, ttl time.Duration, fetch FetchFn) ([]byte, error)
}

// Describer is implemented by stores that can name their driver.
type Describer interface {
	Driver() string
}

// Registry holds the named stores a service can be pointed at.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]Store
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Store)}
}

// Register adds or replaces the store under name.
func (r *Registry) Register(name string, store Store) error {
	if store == nil {
		return ErrNilStore
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[name] = store
	return nil
}

// Lookup returns the store registered under name.
func (r *Registry) Lookup(name string) (Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[name]
	return s, ok
}

// Names lists registered store names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
