package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
	"github.com/Sternrassler/html-fragment-cache/pkg/identifier"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.True(t, s.Enabled)
	assert.Equal(t, "default", s.CacheStore)
	assert.Equal(t, "6 hours", s.DefaultTTL)
	assert.Equal(t, "html_fragment", s.Variant)
	assert.Equal(t, "v1", s.Version)
	assert.Equal(t, "default", s.Identifier.Resolver)
	assert.Len(t, s.Identifier.Sources, 4)
	assert.Equal(t, "redis", s.Stores["default"])
	assert.Equal(t, "localhost:6379", s.Redis.Addr)
	assert.Equal(t, 24*time.Hour, s.Memory.MaxTTL)

	cfg, err := s.Fragment()
	require.NoError(t, err)
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, fragment.DefaultSources(), cfg.Identifier.Sources)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("FRAGMENT_CACHE_ENABLED", "false")
	t.Setenv("FRAGMENT_CACHE_STORE", "memory")
	t.Setenv("FRAGMENT_CACHE_TTL", "10 minutes")
	t.Setenv("FRAGMENT_CACHE_VARIANT", "widget")
	t.Setenv("FRAGMENT_CACHE_VERSION", "v2")
	t.Setenv("FRAGMENT_CACHE_ID_PREFIX", "tenant-a:")
	t.Setenv("FRAGMENT_CACHE_REDIS_ADDR", "redis:6380")
	t.Setenv("FRAGMENT_CACHE_REDIS_DB", "3")
	t.Setenv("FRAGMENT_CACHE_LOG_LEVEL", "debug")

	s, err := Load("")
	require.NoError(t, err)

	assert.False(t, s.Enabled)
	assert.Equal(t, "memory", s.CacheStore)
	assert.Equal(t, "10 minutes", s.DefaultTTL)
	assert.Equal(t, "widget", s.Variant)
	assert.Equal(t, "v2", s.Version)
	assert.Equal(t, "tenant-a:", s.Identifier.Prefix)
	assert.Equal(t, "redis:6380", s.Redis.Addr)
	assert.Equal(t, 3, s.Redis.DB)
	assert.Equal(t, "debug", s.LogLevel)

	cfg, err := s.Fragment()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnabled())
	require.NotNil(t, cfg.Enabled)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragment-cache.yaml")
	content := `
cache_store: local
variant: widget
identifier:
  prefix: "acme:"
  sources:
    - type: route
      name: customer
      label: customer
    - type: property
      path: account.owner.id
stores:
  local: memory
memory:
  capacity: 500
  max_ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", s.CacheStore)
	assert.Equal(t, 500, s.Memory.Capacity)
	assert.Equal(t, time.Hour, s.Memory.MaxTTL)

	cfg, err := s.Fragment()
	require.NoError(t, err)
	assert.Equal(t, "acme:", cfg.Identifier.Prefix)
	assert.Equal(t, []identifier.Source{
		identifier.RouteParam("customer", "customer"),
		identifier.Property("account.owner.id", ""),
	}, cfg.Identifier.Sources)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSettings_Validate(t *testing.T) {
	valid := func() Settings {
		s, err := Load("")
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name   string
		modify func(*Settings)
		field  string
	}{
		{"valid", func(*Settings) {}, ""},
		{"unknown store", func(s *Settings) { s.CacheStore = "nope" }, "CacheStore"},
		{"empty variant", func(s *Settings) { s.Variant = "" }, "Variant"},
		{"bad driver", func(s *Settings) { s.Stores = map[string]string{"default": "memcached"} }, "Stores"},
		{"bad source type", func(s *Settings) {
			s.Identifier.Sources = []Source{{Type: "header", Name: "X-Customer"}}
		}, "Identifier"},
		{"property without path", func(s *Settings) {
			s.Identifier.Sources = []Source{{Type: "property"}}
		}, "Identifier"},
		{"route without name", func(s *Settings) {
			s.Identifier.Sources = []Source{{Type: "route", Path: "x"}}
		}, "Identifier"},
		{"redis without addr", func(s *Settings) { s.Redis.Addr = "" }, "Redis"},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }, "LogLevel"},
		{"zero memory capacity", func(s *Settings) { s.Memory.Capacity = 0 }, "Memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.modify(&s)
			err := s.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestSettings_UnparsableTTLIsAccepted(t *testing.T) {
	t.Setenv("FRAGMENT_CACHE_TTL", "whenever")
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "whenever", s.DefaultTTL)
}

func TestSource_Source(t *testing.T) {
	_, err := Source{Type: "header"}.Source()
	assert.ErrorIs(t, err, ErrUnknownSourceType)
}

func TestOpenStores(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	stores, err := s.OpenStores()
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	assert.Equal(t, []string{"default", "memory"}, stores.Registry.Names())
	assert.NotNil(t, stores.Redis)

	s.Stores = map[string]string{"only": "memory"}
	memOnly, err := s.OpenStores()
	require.NoError(t, err)
	assert.Nil(t, memOnly.Redis)
	assert.NoError(t, memOnly.Close())
}
