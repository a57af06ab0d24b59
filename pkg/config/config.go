// Package config loads fragment cache settings from a file and the
// environment.
//
// Every key can be set in a YAML, TOML or JSON file. The most common ones
// are also read from the environment:
//
//	FRAGMENT_CACHE_ENABLED     enabled
//	FRAGMENT_CACHE_STORE       cache_store
//	FRAGMENT_CACHE_TTL         default_ttl
//	FRAGMENT_CACHE_VARIANT     variant
//	FRAGMENT_CACHE_VERSION     version
//	FRAGMENT_CACHE_ID_PREFIX   identifier.prefix
//	FRAGMENT_CACHE_REDIS_ADDR  redis.addr
//	FRAGMENT_CACHE_REDIS_DB    redis.db
//	FRAGMENT_CACHE_LOG_LEVEL   log_level
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
	"github.com/Sternrassler/html-fragment-cache/pkg/identifier"
	"github.com/Sternrassler/html-fragment-cache/pkg/ttl"
)

// Store drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Source mirrors identifier.Source in file form.
type Source struct {
	Type  string `mapstructure:"type"`
	Path  string `mapstructure:"path"`
	Name  string `mapstructure:"name"`
	Label string `mapstructure:"label"`
}

// IdentifierSettings configures identifier resolution.
type IdentifierSettings struct {
	Prefix   string   `mapstructure:"prefix"`
	Resolver string   `mapstructure:"resolver"`
	Sources  []Source `mapstructure:"sources"`
}

// RedisSettings holds the Redis connection used by redis stores.
type RedisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MemorySettings sizes memory stores.
type MemorySettings struct {
	Capacity int           `mapstructure:"capacity"`
	Shards   int           `mapstructure:"shards"`
	MaxTTL   time.Duration `mapstructure:"max_ttl"`
}

// Settings is the complete configuration.
type Settings struct {
	Enabled    bool               `mapstructure:"enabled"`
	CacheStore string             `mapstructure:"cache_store"`
	DefaultTTL string             `mapstructure:"default_ttl"`
	Variant    string             `mapstructure:"variant"`
	Version    string             `mapstructure:"version"`
	Identifier IdentifierSettings `mapstructure:"identifier"`

	// Stores maps store names to drivers.
	Stores map[string]string `mapstructure:"stores"`
	Redis  RedisSettings     `mapstructure:"redis"`
	Memory MemorySettings    `mapstructure:"memory"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

var envBindings = map[string]string{
	"enabled":           "FRAGMENT_CACHE_ENABLED",
	"cache_store":       "FRAGMENT_CACHE_STORE",
	"default_ttl":       "FRAGMENT_CACHE_TTL",
	"variant":           "FRAGMENT_CACHE_VARIANT",
	"version":           "FRAGMENT_CACHE_VERSION",
	"identifier.prefix": "FRAGMENT_CACHE_ID_PREFIX",
	"redis.addr":        "FRAGMENT_CACHE_REDIS_ADDR",
	"redis.password":    "FRAGMENT_CACHE_REDIS_PASSWORD",
	"redis.db":          "FRAGMENT_CACHE_REDIS_DB",
	"log_level":         "FRAGMENT_CACHE_LOG_LEVEL",
}

// SetDefaults registers the stock defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("enabled", true)
	v.SetDefault("cache_store", fragment.DefaultStore)
	v.SetDefault("default_ttl", ttl.DefaultTTL)
	v.SetDefault("variant", fragment.DefaultVariant)
	v.SetDefault("version", fragment.DefaultVersion)

	v.SetDefault("identifier.prefix", "")
	v.SetDefault("identifier.resolver", identifier.DefaultResolverName)
	v.SetDefault("identifier.sources", []map[string]any{
		{"type": "property", "path": "customer.id", "label": "customer"},
		{"type": "property", "path": "organization.id", "label": "org"},
		{"type": "route", "name": "customer", "label": "customer"},
		{"type": "route", "name": "organization", "label": "org"},
	})

	v.SetDefault("stores", map[string]string{
		fragment.DefaultStore: DriverRedis,
		DriverMemory:          DriverMemory,
	})
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("memory.capacity", 10000)
	v.SetDefault("memory.shards", 64)
	v.SetDefault("memory.max_ttl", 24*time.Hour)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
}

// Load reads settings from path (optional) and the environment, then
// validates them.
func Load(path string) (Settings, error) {
	v := viper.New()
	SetDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Settings{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates settings from an existing viper instance.
func FromViper(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}

// ErrUnknownSourceType is returned for sources that are neither property
// nor route.
var ErrUnknownSourceType = errors.New("unknown identifier source type")

// Source converts to identifier.Source.
func (s Source) Source() (identifier.Source, error) {
	switch identifier.Kind(s.Type) {
	case identifier.KindProperty:
		return identifier.Property(s.Path, s.Label), nil
	case identifier.KindRoute:
		return identifier.RouteParam(s.Name, s.Label), nil
	default:
		return identifier.Source{}, fmt.Errorf("%w: %q", ErrUnknownSourceType, s.Type)
	}
}

// Fragment converts the settings into a fragment.Config.
func (s Settings) Fragment() (fragment.Config, error) {
	sources := make([]identifier.Source, 0, len(s.Identifier.Sources))
	for _, src := range s.Identifier.Sources {
		converted, err := src.Source()
		if err != nil {
			return fragment.Config{}, err
		}
		sources = append(sources, converted)
	}

	return fragment.Config{
		Enabled:    fragment.Bool(s.Enabled),
		Store:      s.CacheStore,
		DefaultTTL: s.DefaultTTL,
		Variant:    s.Variant,
		Version:    s.Version,
		Identifier: fragment.IdentifierConfig{
			Prefix:   s.Identifier.Prefix,
			Sources:  sources,
			Resolver: s.Identifier.Resolver,
		},
	}, nil
}
