package fragment

// Option adjusts a single call.
type Option func(*callOptions)

type callOptions struct {
	ttl     any
	variant string
	version string
}

// WithTTL sets the entry lifetime. Accepts everything ttl.Normalize does:
// time.Time, time.Duration, ttl.Expiry, integer seconds or a string such as
// "10 minutes".
func WithTTL(v any) Option {
	return func(o *callOptions) { o.ttl = v }
}

// WithVariant overrides the configured variant.
func WithVariant(v string) Option {
	return func(o *callOptions) { o.variant = v }
}

// WithVersion overrides the configured version.
func WithVersion(v string) Option {
	return func(o *callOptions) { o.version = v }
}

func resolveOptions(cfg Config, opts []Option) callOptions {
	o := callOptions{variant: cfg.Variant, version: cfg.Version}
	for _, opt := range opts {
		opt(&o)
	}
	if o.variant == "" {
		o.variant = cfg.Variant
	}
	if o.version == "" {
		o.version = cfg.Version
	}
	return o
}
