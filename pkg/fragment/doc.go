// Package fragment caches rendered HTML fragments.
//
// A fragment is stored under variant:slug(identifier):version in a named
// cache.Store. The identifier names the business entity the fragment is
// about (e.g., customer:123), the variant distinguishes fragment shapes for
// one identifier and the version is bumped to invalidate old markup.
//
// # Basic Usage
//
//	stores := cache.NewRegistry()
//	stores.Register("default", cache.NewManager(redisClient))
//
//	svc, err := fragment.New(fragment.DefaultConfig(), stores)
//	if err != nil {
//		return err
//	}
//
//	html, err := svc.RememberHTML(ctx, "customer:123", func(ctx context.Context) (any, error) {
//		return renderWidget(ctx)
//	}, fragment.WithVariant("widget"), fragment.WithTTL("10 minutes"))
//
// # Components
//
// Component resolves the identifier from a subject and the request route:
//
//	html, err := svc.Component(order).RenderCached(ctx, fragment.Template(tmpl, "order", order))
//
// # Bypass
//
// RememberHTML renders without touching the store when caching is disabled,
// when no identifier is available and when the store fails. Only builder
// errors reach the caller.
//
// # Administration
//
// Forget drops one fragment, FlushAll empties the whole store. FlushAll is not
// limited to fragments; use a dedicated store when the backend is shared.
package fragment
