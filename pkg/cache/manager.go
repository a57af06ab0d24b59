package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const redisBackend = "redis"

// Manager is a Redis-backed Store. Fragments are stored as raw HTML bytes
// with a native Redis TTL.
type Manager struct {
	redis  *redis.Client
	group  singleflight.Group
	logger zerolog.Logger
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis:  redisClient,
		logger: log.With().Str("component", "fragment-store").Str("backend", redisBackend).Logger(),
	}
}

// Driver implements Describer.
func (m *Manager) Driver() string {
	return redisBackend
}

// Get retrieves a fragment by key.
// Returns ErrCacheMiss if the key doesn't exist or has expired.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			StoreMisses.WithLabelValues(redisBackend).Inc()
			return nil, ErrCacheMiss
		}
		StoreErrors.WithLabelValues(redisBackend, "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	StoreHits.WithLabelValues(redisBackend).Inc()
	return data, nil
}

// Set stores a fragment; Redis removes it once ttl elapses.
func (m *Manager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, don't cache
		return nil
	}

	if err := m.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		StoreErrors.WithLabelValues(redisBackend, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	StoreWrites.WithLabelValues(redisBackend).Inc()
	return nil
}

// Delete removes a fragment.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.redis.Del(ctx, key).Err(); err != nil {
		StoreErrors.WithLabelValues(redisBackend, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Flush empties the selected Redis database (FLUSHDB). Every key of that
// database is removed, not only fragments.
func (m *Manager) Flush(ctx context.Context) error {
	if err := m.redis.FlushDB(ctx).Err(); err != nil {
		StoreErrors.WithLabelValues(redisBackend, "flush").Inc()
		return fmt.Errorf("redis flushdb: %w", err)
	}
	return nil
}

// Remember implements Rememberer. Concurrent callers in this process share
// one fetch per key; callers in other processes may still race and the
// later write wins.
func (m *Manager) Remember(ctx context.Context, key string, ttl time.Duration, fetch FetchFn) ([]byte, error) {
	v, err, _ := m.group.Do(key, func() (any, error) {
		data, err := m.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			m.logger.Warn().Err(err).Str("key", key).Msg("Cache get error, computing fragment")
		}

		data, err = fetch(ctx)
		if err != nil {
			return nil, err
		}

		if err := m.Set(ctx, key, data, ttl); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache fragment")
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
