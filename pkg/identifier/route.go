package identifier

import (
	"context"

	"github.com/labstack/echo/v4"
)

// RouteContext exposes the parameters of the route serving the request.
type RouteContext interface {
	Param(name string) (any, bool)
}

// Params is a static RouteContext.
type Params map[string]any

// Param implements RouteContext.
func (p Params) Param(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

type routeContextKey struct{}

// WithRoute attaches the active route to ctx for RouteParam sources.
func WithRoute(ctx context.Context, rc RouteContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if rc == nil {
		return ctx
	}
	return context.WithValue(ctx, routeContextKey{}, rc)
}

// RouteFromContext returns the route attached by WithRoute.
func RouteFromContext(ctx context.Context) (RouteContext, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(routeContextKey{}).(RouteContext)
	return rc, ok
}

// echoRoute reads bound values (c.Get) before raw path parameters so that a
// handler or middleware can bind a model under the parameter name.
type echoRoute struct {
	c echo.Context
}

// EchoRoute adapts an echo request context to RouteContext.
func EchoRoute(c echo.Context) RouteContext {
	return echoRoute{c: c}
}

func (r echoRoute) Param(name string) (any, bool) {
	if v := r.c.Get(name); v != nil {
		return v, true
	}
	for _, n := range r.c.ParamNames() {
		if n == name {
			return r.c.Param(name), true
		}
	}
	return nil, false
}

// EchoMiddleware attaches the echo route to the request context so that
// services deeper in the call chain can resolve RouteParam sources.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(WithRoute(req.Context(), EchoRoute(c))))
			return next(c)
		}
	}
}
