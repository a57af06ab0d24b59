package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/html-fragment-cache/pkg/cache"
)

// Stores holds the opened stores and the connections behind them.
type Stores struct {
	Registry *cache.Registry
	Redis    *redis.Client
}

// Close releases the Redis connection, if any.
func (s *Stores) Close() error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Close()
}

// OpenStores creates every configured store. All redis stores share one
// client; every memory store gets its own cache.
func (s Settings) OpenStores() (*Stores, error) {
	out := &Stores{Registry: cache.NewRegistry()}

	for name, driver := range s.Stores {
		var store cache.Store
		switch driver {
		case DriverRedis:
			if out.Redis == nil {
				out.Redis = redis.NewClient(&redis.Options{
					Addr:     s.Redis.Addr,
					Password: s.Redis.Password,
					DB:       s.Redis.DB,
				})
			}
			store = cache.NewManager(out.Redis)
		case DriverMemory:
			mem, err := cache.NewMemoryStore(s.memoryConfig())
			if err != nil {
				_ = out.Close()
				return nil, fmt.Errorf("memory store %q: %w", name, err)
			}
			store = mem
		default:
			_ = out.Close()
			return nil, fmt.Errorf("store %q: unknown driver %q", name, driver)
		}

		if err := out.Registry.Register(name, store); err != nil {
			_ = out.Close()
			return nil, err
		}
	}

	return out, nil
}

func (s Settings) memoryConfig() cache.MemoryConfig {
	cfg := cache.DefaultMemoryConfig()
	if s.Memory.Capacity > 0 {
		cfg.Capacity = s.Memory.Capacity
	}
	if s.Memory.Shards > 0 {
		cfg.NumShards = s.Memory.Shards
	}
	if s.Memory.MaxTTL > 0 {
		cfg.MaxTTL = s.Memory.MaxTTL
	}
	return cfg
}
