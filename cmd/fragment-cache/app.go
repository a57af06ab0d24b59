package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/html-fragment-cache/pkg/config"
	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
	"github.com/Sternrassler/html-fragment-cache/pkg/logging"
)

// app carries what the commands share. Tests inject svc directly.
type app struct {
	configPath    string
	traceExporter string

	settings config.Settings
	stores   *config.Stores
	svc      *fragment.Service
	ready    func(ctx context.Context) error

	shutdownTracing func(context.Context) error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "fragment-cache",
		Short:         "Administer the HTML fragment cache",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (YAML, TOML or JSON)")
	root.PersistentFlags().StringVar(&a.traceExporter, "trace", "none", "trace exporter: none or stdout")

	root.AddCommand(
		newForgetCmd(a),
		newForgetPatternCmd(a),
		newFlushCmd(a),
		newInfoCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.svc != nil {
		return nil
	}

	settings, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.settings = settings

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(settings.LogLevel),
		Pretty: settings.LogPretty,
		Output: cmd.ErrOrStderr(),
	})

	tp, shutdown, err := newTracerProvider(a.traceExporter, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.shutdownTracing = shutdown

	stores, err := settings.OpenStores()
	if err != nil {
		return err
	}
	a.stores = stores
	a.ready = func(ctx context.Context) error {
		if stores.Redis == nil {
			return nil
		}
		return stores.Redis.Ping(ctx).Err()
	}

	fcfg, err := settings.Fragment()
	if err != nil {
		return err
	}

	svc, err := fragment.New(fcfg, stores.Registry, fragment.WithTracerProvider(tp))
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.shutdownTracing != nil {
		errs = append(errs, a.shutdownTracing(ctx))
	}
	if a.stores != nil {
		errs = append(errs, a.stores.Close())
	}
	return errors.Join(errs...)
}

// confirm asks a yes/no question unless assumeYes is set.
func confirm(in io.Reader, out io.Writer, assumeYes bool, question string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
