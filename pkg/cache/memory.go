package cache

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

const memoryBackend = "memory"

// MemoryConfig configures the in-process store.
type MemoryConfig struct {
	// Capacity is the maximum number of fragments held.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	NumShards int

	// MaxTTL bounds the lifetime of every entry regardless of its own TTL.
	MaxTTL time.Duration

	// EvictionPercentage is the share of entries evicted when full (1-100).
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are swept.
	// Zero uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultMemoryConfig returns sensible defaults for a single process.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          64,
		MaxTTL:             24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Validate checks whether the configuration values are valid.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.MaxTTL <= 0 {
		return &ConfigError{Field: "MaxTTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}
	return nil
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store built on sturdyc. sturdyc only knows a
// cache-wide TTL, so each entry carries its own expiry which is checked on
// read.
type MemoryStore struct {
	client *sturdyc.Client[memoryEntry]
	now    func() time.Time
}

// NewMemoryStore creates an in-process store.
func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[memoryEntry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.MaxTTL,
		cfg.EvictionPercentage,
		opts...,
	)

	return &MemoryStore{client: client, now: time.Now}, nil
}

// Driver implements Describer.
func (s *MemoryStore) Driver() string {
	return memoryBackend
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := s.client.Get(key)
	if !ok || s.expired(entry) {
		if ok {
			s.client.Delete(key)
		}
		StoreMisses.WithLabelValues(memoryBackend).Inc()
		return nil, ErrCacheMiss
	}

	StoreHits.WithLabelValues(memoryBackend).Inc()
	return entry.value, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.client.Set(key, memoryEntry{value: value, expiresAt: s.now().Add(ttl)})
	StoreWrites.WithLabelValues(memoryBackend).Inc()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Flush implements Store.
func (s *MemoryStore) Flush(_ context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}

// Len returns the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	return s.client.Size()
}

// Remember implements Rememberer using sturdyc's in-flight deduplication.
func (s *MemoryStore) Remember(ctx context.Context, key string, ttl time.Duration, fetch FetchFn) ([]byte, error) {
	fetched := false
	fetchEntry := func(ctx context.Context) (memoryEntry, error) {
		fetched = true
		value, err := fetch(ctx)
		if err != nil {
			return memoryEntry{}, err
		}
		StoreWrites.WithLabelValues(memoryBackend).Inc()
		return memoryEntry{value: value, expiresAt: s.now().Add(ttl)}, nil
	}

	entry, err := s.client.GetOrFetch(ctx, key, fetchEntry)
	if err != nil {
		return nil, err
	}

	if s.expired(entry) && !fetched {
		s.client.Delete(key)
		entry, err = s.client.GetOrFetch(ctx, key, fetchEntry)
		if err != nil {
			return nil, err
		}
	}

	if fetched {
		StoreMisses.WithLabelValues(memoryBackend).Inc()
		if ttl <= 0 {
			s.client.Delete(key)
		}
	} else {
		StoreHits.WithLabelValues(memoryBackend).Inc()
	}
	return entry.value, nil
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !s.now().Before(e.expiresAt)
}
