package identifier

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DefaultResolverName is the registry name of DefaultResolver.
const DefaultResolverName = "default"

// ErrUnknownResolver is returned by New for unregistered names.
var ErrUnknownResolver = errors.New("unknown identifier resolver")

// Factory builds a Resolver from the configured prefix and sources.
type Factory func(prefix string, sources []Source) Resolver

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		DefaultResolverName: func(prefix string, sources []Source) Resolver {
			return NewDefaultResolver(prefix, sources)
		},
	}
)

// Register makes a resolver implementation selectable by name.
// Registering an existing name replaces it.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		panic("identifier: Register requires a name and a factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// New builds the resolver registered under name. An empty name selects the
// default resolver.
func New(name, prefix string, sources []Source) (Resolver, error) {
	if name == "" {
		name = DefaultResolverName
	}

	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResolver, name)
	}
	return f(prefix, sources), nil
}

// Registered lists the registered resolver names.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
