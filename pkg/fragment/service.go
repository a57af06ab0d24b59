package fragment

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sternrassler/html-fragment-cache/pkg/cache"
	"github.com/Sternrassler/html-fragment-cache/pkg/identifier"
	"github.com/Sternrassler/html-fragment-cache/pkg/logging"
	"github.com/Sternrassler/html-fragment-cache/pkg/ttl"
)

const tracerName = "html-fragment-cache"

// Service caches rendered HTML fragments in a named store.
// It is safe for concurrent use.
type Service struct {
	stores *cache.Registry
	keys   cache.KeySerializer
	now    func() time.Time
	logger zerolog.Logger
	tracer trace.Tracer

	state atomic.Pointer[state]
}

// state is an immutable configuration snapshot.
type state struct {
	cfg      Config
	resolver identifier.Resolver
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithKeySerializer replaces the default slug key format.
func WithKeySerializer(k cache.KeySerializer) ServiceOption {
	return func(s *Service) { s.keys = k }
}

// WithClock sets the clock used to resolve TTLs.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) ServiceOption {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

// New creates a service over the given stores.
func New(cfg Config, stores *cache.Registry, opts ...ServiceOption) (*Service, error) {
	if stores == nil {
		return nil, ErrNoRegistry
	}

	s := &Service{
		stores: stores,
		keys:   cache.DefaultKeySerializer,
		now:    time.Now,
		logger: logging.NewLogger("fragment-cache"),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload validates cfg and swaps it in. Calls already running keep the
// previous snapshot. On error the current configuration stays active.
func (s *Service) Reload(cfg Config) error {
	cfg = cfg.withDefaults()

	if _, ok := s.stores.Lookup(cfg.Store); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}

	resolver, err := identifier.New(cfg.Identifier.Resolver, cfg.Identifier.Prefix, cfg.Identifier.Sources)
	if err != nil {
		return err
	}

	s.state.Store(&state{cfg: cfg, resolver: resolver})
	s.logger.Debug().
		Bool("enabled", cfg.IsEnabled()).
		Str("store", cfg.Store).
		Str("variant", cfg.Variant).
		Str("version", cfg.Version).
		Msg("Fragment cache configured")
	return nil
}

// Config returns a copy of the active configuration.
func (s *Service) Config() Config {
	return s.state.Load().cfg.withDefaults()
}

// IsEnabled reports whether caching is on. Read fresh on every call.
func (s *Service) IsEnabled() bool {
	return s.state.Load().cfg.IsEnabled()
}

// BackendName returns the configured store name.
func (s *Service) BackendName() string {
	return s.state.Load().cfg.Store
}

// BackendInfo describes the configured store.
type BackendInfo struct {
	Name   string `json:"store_name"`
	Type   string `json:"store_class"`
	Driver string `json:"driver"`
}

// BackendInfo returns diagnostics about the configured store.
func (s *Service) BackendInfo() (BackendInfo, error) {
	name := s.BackendName()
	store, ok := s.stores.Lookup(name)
	if !ok {
		return BackendInfo{Name: name}, fmt.Errorf("%w: %q", ErrUnknownStore, name)
	}

	info := BackendInfo{Name: name, Type: fmt.Sprintf("%T", store), Driver: "unknown"}
	if d, ok := store.(cache.Describer); ok {
		info.Driver = d.Driver()
	}
	return info, nil
}

// Key returns the storage key for identifier under the configured or
// overridden variant and version. TTL options are ignored.
func (s *Service) Key(identifier string, opts ...Option) string {
	o := resolveOptions(s.state.Load().cfg, opts)
	return s.keys.Key(identifier, o.variant, o.version)
}

// ResolveIdentifier derives an identifier from subject and the route in ctx.
func (s *Service) ResolveIdentifier(ctx context.Context, subject any) (string, bool) {
	return s.state.Load().resolver.Resolve(ctx, subject)
}

// RememberHTML returns the cached fragment for identifier, or runs build and
// caches its output. A hit never runs build.
//
// When caching is disabled or identifier is empty build runs directly and
// the store is not touched. Store failures are treated as a miss: build
// runs and its output is returned. Errors from build are returned unchanged
// and nothing is cached.
//
// Concurrent misses for one key run build once when the store implements
// cache.Rememberer; otherwise each caller may build and the last write wins.
func (s *Service) RememberHTML(ctx context.Context, identifier string, build Builder, opts ...Option) (string, error) {
	st := s.state.Load()
	cfg := st.cfg

	if !cfg.IsEnabled() {
		CacheBypass.WithLabelValues("disabled").Inc()
		return s.build(ctx, build)
	}
	if identifier == "" {
		CacheBypass.WithLabelValues("no_identifier").Inc()
		s.logger.Debug().Msg("No fragment identifier, rendering without cache")
		return s.build(ctx, build)
	}

	o := resolveOptions(cfg, opts)
	key := s.keys.Key(identifier, o.variant, o.version)
	now := s.now()
	expiry := ttl.Normalizer{Now: func() time.Time { return now }}.Normalize(o.ttl, cfg.DefaultTTL)
	lifetime := expiry.TTL(now)

	ctx, span := s.tracer.Start(ctx, "fragment.RememberHTML", trace.WithAttributes(
		attribute.String("fragment.key", key),
		attribute.String("fragment.store", cfg.Store),
	))
	defer span.End()

	logger := s.logger.With().Str("key", key).Str("store", cfg.Store).Logger()

	store, ok := s.stores.Lookup(cfg.Store)
	if !ok {
		CacheBypass.WithLabelValues("no_store").Inc()
		logger.Warn().Msg("Cache store not registered, rendering without cache")
		return s.build(ctx, build)
	}

	var (
		built      bool
		buildErr   error
		buildPanic any
	)
	fetch := func(ctx context.Context) ([]byte, error) {
		built = true
		defer func() {
			// Stores may recover panics into errors; keep the original so it
			// is not mistaken for a backend failure.
			if r := recover(); r != nil {
				buildPanic = r
				panic(r)
			}
		}()
		html, err := s.build(ctx, build)
		if err != nil {
			buildErr = err
			return nil, err
		}
		return []byte(html), nil
	}

	var (
		data []byte
		err  error
	)
	if r, ok := store.(cache.Rememberer); ok {
		data, err = r.Remember(ctx, key, lifetime, fetch)
		if buildPanic != nil {
			panic(buildPanic)
		}
		if err != nil && buildErr == nil {
			s.backendFailure(span, logger, cfg.Store, "remember", err)
			return s.build(ctx, build)
		}
	} else {
		data, err = s.getOrSet(ctx, logger, span, store, cfg.Store, key, lifetime, fetch)
	}

	if buildErr != nil {
		span.SetStatus(codes.Error, "builder failed")
		return "", buildErr
	}
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.Bool("fragment.hit", !built))
	if built {
		CacheMisses.Inc()
		logger.Debug().Dur("ttl", lifetime).Msg("Fragment cache miss")
	} else {
		CacheHits.Inc()
		logger.Debug().Msg("Fragment cache hit")
	}
	return string(data), nil
}

// getOrSet is the non-atomic remember for stores offering only get and set.
func (s *Service) getOrSet(
	ctx context.Context,
	logger zerolog.Logger,
	span trace.Span,
	store cache.Store,
	storeName, key string,
	lifetime time.Duration,
	fetch cache.FetchFn,
) ([]byte, error) {
	data, err := store.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.backendFailure(span, logger, storeName, "get", err)
	}

	data, err = fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := store.Set(ctx, key, data, lifetime); err != nil {
		s.backendFailure(span, logger, storeName, "set", err)
	}
	return data, nil
}

func (s *Service) backendFailure(span trace.Span, logger zerolog.Logger, store, op string, err error) {
	BackendErrors.WithLabelValues(store, op).Inc()
	span.RecordError(err)
	logger.Warn().Err(err).Str("operation", op).Msg("Cache backend error, rendering without cache")
}

func (s *Service) build(ctx context.Context, build Builder) (string, error) {
	Builds.Inc()
	start := time.Now()
	defer func() { BuildDuration.Observe(time.Since(start).Seconds()) }()
	return render(ctx, build)
}

// Forget removes the cached fragment for identifier. It is a no-op while
// caching is disabled. A missing entry is not an error.
func (s *Service) Forget(ctx context.Context, identifier string, opts ...Option) error {
	cfg := s.state.Load().cfg
	if !cfg.IsEnabled() {
		return nil
	}

	o := resolveOptions(cfg, opts)
	key := s.keys.Key(identifier, o.variant, o.version)

	ctx, span := s.tracer.Start(ctx, "fragment.Forget", trace.WithAttributes(
		attribute.String("fragment.key", key),
		attribute.String("fragment.store", cfg.Store),
	))
	defer span.End()

	return s.admin(span, cfg.Store, "forget", key, func(store cache.Store) error {
		return store.Delete(ctx, key)
	})
}

// FlushAll empties the configured store.
//
// This is not scoped to fragments: every entry in the store goes, including
// data other parts of the application keep there.
func (s *Service) FlushAll(ctx context.Context) error {
	name := s.BackendName()

	ctx, span := s.tracer.Start(ctx, "fragment.FlushAll", trace.WithAttributes(
		attribute.String("fragment.store", name),
	))
	defer span.End()

	return s.admin(span, name, "flush", "", func(store cache.Store) error {
		return store.Flush(ctx)
	})
}

func (s *Service) admin(span trace.Span, name, op, key string, fn func(cache.Store) error) error {
	logger := s.logger.With().Str("store", name).Str("operation", op).Logger()
	if key != "" {
		logger = logger.With().Str("key", key).Logger()
	}

	store, ok := s.stores.Lookup(name)
	if !ok {
		err := &BackendError{Store: name, Operation: op, Err: ErrUnknownStore}
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Msg("Cache store not registered")
		return err
	}

	if err := fn(store); err != nil {
		BackendErrors.WithLabelValues(name, op).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		logger.Error().Err(err).Msg("Fragment cache operation failed")
		return &BackendError{Store: name, Operation: op, Err: err}
	}

	logger.Info().Msg("Fragment cache operation completed")
	return nil
}
