package fragment

import (
	"github.com/Sternrassler/html-fragment-cache/pkg/identifier"
	"github.com/Sternrassler/html-fragment-cache/pkg/ttl"
)

const (
	// DefaultStore is the store name used when none is configured.
	DefaultStore = "default"

	// DefaultVariant tags fragments when no variant is given.
	DefaultVariant = "html_fragment"

	// DefaultVersion tags fragments when no version is given.
	DefaultVersion = "v1"
)

// IdentifierConfig controls how identifiers are derived from a subject.
type IdentifierConfig struct {
	// Prefix is prepended to every resolved identifier.
	Prefix string

	// Sources are tried property-first, then route; see identifier.DefaultResolver.
	Sources []identifier.Source

	// Resolver names a registered identifier.Factory. Empty means default.
	Resolver string
}

// Config is the service configuration. Swap it at runtime with Service.Reload.
type Config struct {
	// Enabled gates all caching. nil counts as disabled.
	Enabled *bool

	// Store names the registered cache.Store to use.
	Store string

	// DefaultTTL is a human-readable duration applied when a call gives none.
	DefaultTTL string

	// Variant and Version are the defaults for calls that do not set them.
	Variant string
	Version string

	Identifier IdentifierConfig
}

// DefaultSources returns the stock identifier sources: customer then
// organization, first as properties of the subject, then as route parameters.
func DefaultSources() []identifier.Source {
	return []identifier.Source{
		identifier.Property("customer.id", "customer"),
		identifier.Property("organization.id", "org"),
		identifier.RouteParam("customer", "customer"),
		identifier.RouteParam("organization", "org"),
	}
}

// DefaultConfig returns an enabled configuration with stock defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:    Bool(true),
		Store:      DefaultStore,
		DefaultTTL: ttl.DefaultTTL,
		Variant:    DefaultVariant,
		Version:    DefaultVersion,
		Identifier: IdentifierConfig{
			Sources:  DefaultSources(),
			Resolver: identifier.DefaultResolverName,
		},
	}
}

// Bool returns a pointer to b, for Config.Enabled.
func Bool(b bool) *bool {
	return &b
}

// IsEnabled reports the gate; a nil flag is false.
func (c Config) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// withDefaults fills empty fields. Enabled is left alone so nil stays closed.
func (c Config) withDefaults() Config {
	if c.Store == "" {
		c.Store = DefaultStore
	}
	if c.DefaultTTL == "" {
		c.DefaultTTL = ttl.DefaultTTL
	}
	if c.Variant == "" {
		c.Variant = DefaultVariant
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Identifier.Resolver == "" {
		c.Identifier.Resolver = identifier.DefaultResolverName
	}
	if c.Enabled != nil {
		c.Enabled = Bool(*c.Enabled)
	}
	c.Identifier.Sources = append([]identifier.Source(nil), c.Identifier.Sources...)
	return c
}
