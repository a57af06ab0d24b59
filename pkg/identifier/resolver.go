package identifier

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Resolver derives an identifier for subject. It returns false when no
// identifier can be derived, which callers treat as "do not cache".
type Resolver interface {
	Resolve(ctx context.Context, subject any) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, subject any) (string, bool)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, subject any) (string, bool) {
	return f(ctx, subject)
}

// DefaultResolver tries every Property source and then every RouteParam
// source, returning the first non-empty value formatted as
// "{prefix}{label:}{value}".
type DefaultResolver struct {
	prefix  string
	sources []Source
	logger  zerolog.Logger
}

// NewDefaultResolver creates a resolver over the given sources.
func NewDefaultResolver(prefix string, sources []Source) *DefaultResolver {
	r := &DefaultResolver{
		prefix:  prefix,
		sources: append([]Source(nil), sources...),
		logger:  log.With().Str("component", "identifier-resolver").Logger(),
	}

	if interleaved(r.sources) {
		r.logger.Debug().
			Msg("Route sources are declared before property sources; property sources are always tried first")
	}

	return r
}

// Resolve implements Resolver.
func (r *DefaultResolver) Resolve(ctx context.Context, subject any) (string, bool) {
	if subject != nil {
		for _, src := range r.sources {
			if src.Kind != KindProperty || !src.Usable() {
				continue
			}
			val, ok := Walk(subject, src.Path)
			if !ok {
				continue
			}
			val = unwrapKey(val)
			if IsEmpty(val) {
				continue
			}
			return r.found(src, val), true
		}
	}

	route, ok := RouteFromContext(ctx)
	if !ok {
		return "", false
	}

	for _, src := range r.sources {
		if src.Kind != KindRoute || !src.Usable() {
			continue
		}
		val, ok := route.Param(src.Name)
		if !ok || IsEmpty(val) {
			continue
		}
		val = unwrapKey(val)
		if IsEmpty(val) {
			continue
		}
		return r.found(src, val), true
	}

	return "", false
}

// Sources returns a copy of the configured sources.
func (r *DefaultResolver) Sources() []Source {
	return append([]Source(nil), r.sources...)
}

func (r *DefaultResolver) found(src Source, val any) string {
	id := Format(r.prefix, src.Label, val)
	r.logger.Debug().
		Str("source", src.String()).
		Str("identifier", id).
		Msg("Identifier resolved")
	return id
}

// Format renders "{prefix}{label:}{value}".
func Format(prefix, label string, value any) string {
	head := ""
	if label != "" {
		head = label + ":"
	}
	return prefix + head + stringify(value)
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func interleaved(sources []Source) bool {
	seenRoute := false
	for _, s := range sources {
		switch s.Kind {
		case KindRoute:
			seenRoute = true
		case KindProperty:
			if seenRoute {
				return true
			}
		}
	}
	return false
}
