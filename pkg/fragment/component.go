package fragment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Component caches renderings of a view bound to a subject, typically the
// model a template is about. The identifier is resolved from the subject
// and the route in the call's context unless set explicitly.
type Component struct {
	svc        *Service
	subject    any
	identifier string
	extras     []any
}

// Component binds subject to the service.
func (s *Service) Component(subject any) *Component {
	return &Component{svc: s, subject: subject}
}

// WithIdentifier returns a copy using id instead of resolving one. An
// explicit id is used as given; extras do not apply to it.
func (c *Component) WithIdentifier(id string) *Component {
	cp := *c
	cp.identifier = id
	return &cp
}

// WithExtras returns a copy that appends parts to the resolved identifier,
// for components rendered differently under one subject. Scalars are used
// verbatim; other values are replaced by a digest of their JSON form.
func (c *Component) WithExtras(parts ...any) *Component {
	cp := *c
	cp.extras = append(append([]any(nil), c.extras...), parts...)
	return &cp
}

// Identifier returns the identifier the component caches under, or false
// when none can be resolved.
func (c *Component) Identifier(ctx context.Context) (string, bool) {
	if c.identifier != "" {
		return c.identifier, true
	}

	id, ok := c.svc.ResolveIdentifier(ctx, c.subject)
	if !ok {
		return "", false
	}

	if len(c.extras) == 0 {
		return id, true
	}
	parts := make([]string, 0, len(c.extras)+1)
	parts = append(parts, id)
	for _, e := range c.extras {
		parts = append(parts, extraPart(e))
	}
	return strings.Join(parts, ":"), true
}

// RenderCached renders through the cache. Without an identifier it renders
// directly.
func (c *Component) RenderCached(ctx context.Context, build Builder, opts ...Option) (string, error) {
	id, _ := c.Identifier(ctx)
	return c.svc.RememberHTML(ctx, id, build, opts...)
}

// Forget drops the component's cached rendering.
func (c *Component) Forget(ctx context.Context, opts ...Option) error {
	id, ok := c.Identifier(ctx)
	if !ok {
		return nil
	}
	return c.svc.Forget(ctx, id, opts...)
}

func extraPart(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	}

	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", v))
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
