package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"

	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
	"github.com/Sternrassler/html-fragment-cache/pkg/identifier"
	"github.com/Sternrassler/html-fragment-cache/pkg/metrics"
)

type server struct {
	svc       *fragment.Service
	ready     func(ctx context.Context) error
	md        goldmark.Markdown
	now       func() time.Time
	widgetTTL string
}

func newServer(svc *fragment.Service, ready func(ctx context.Context) error) *server {
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}
	return &server{
		svc:       svc,
		ready:     ready,
		md:        goldmark.New(),
		now:       time.Now,
		widgetTTL: "10 minutes",
	}
}

func (s *server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(identifier.EchoMiddleware())

	e.GET("/health", s.health)
	e.GET("/ready", s.readiness)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.GET("/customers/:customer/widget", s.widget)
	e.DELETE("/customers/:customer/widget", s.forgetWidget)
	return e
}

func (s *server) health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *server) readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.ready(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "NOT READY: "+err.Error())
	}
	return c.String(http.StatusOK, "READY")
}

func (s *server) widget(c echo.Context) error {
	build := widgetBuilder(s.md, c.Param("customer"), s.now)

	html, err := s.svc.Component(nil).RenderCached(c.Request().Context(), build,
		fragment.WithVariant("widget"),
		fragment.WithTTL(s.widgetTTL),
	)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "render failed").SetInternal(err)
	}
	return c.HTML(http.StatusOK, html)
}

func (s *server) forgetWidget(c echo.Context) error {
	if err := s.svc.Component(nil).Forget(c.Request().Context(), fragment.WithVariant("widget")); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "forget failed").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo widget, health and metrics endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e := newServer(a.svc, a.ready).routes()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Str("store", a.svc.BackendName()).Msg("Starting fragment cache demo server")
				errCh <- e.Start(addr)
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
