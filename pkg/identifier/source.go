package identifier

import (
	"strings"
)

// Kind tags the variant of a Source.
type Kind string

const (
	// KindProperty reads a dotted path on the subject.
	KindProperty Kind = "property"

	// KindRoute reads a named parameter of the active route.
	KindRoute Kind = "route"
)

// Source describes one way of extracting an identifier value.
// Path is used by KindProperty sources, Name by KindRoute sources.
type Source struct {
	Kind  Kind
	Path  []string
	Name  string
	Label string
}

// Property returns a source walking the dotted path (e.g. "customer.id").
func Property(path, label string) Source {
	var parts []string
	for _, p := range strings.Split(path, ".") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return Source{Kind: KindProperty, Path: parts, Label: label}
}

// RouteParam returns a source reading the named route parameter.
func RouteParam(name, label string) Source {
	return Source{Kind: KindRoute, Name: strings.TrimSpace(name), Label: label}
}

// Usable reports whether the source can be tried at all.
func (s Source) Usable() bool {
	switch s.Kind {
	case KindProperty:
		return len(s.Path) > 0
	case KindRoute:
		return s.Name != ""
	default:
		return false
	}
}

// String renders the source for logs.
func (s Source) String() string {
	switch s.Kind {
	case KindProperty:
		return "property:" + strings.Join(s.Path, ".")
	case KindRoute:
		return "route:" + s.Name
	default:
		return "unknown"
	}
}
