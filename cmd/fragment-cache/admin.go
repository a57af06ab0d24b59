package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
)

func newForgetCmd(a *app) *cobra.Command {
	var (
		id, variant, version string
		yes                  bool
	)

	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Forget the cached fragment of one identifier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			question := fmt.Sprintf("Forget cache for identifier=%s (variant=%s, version=%s)?", id, variant, version)
			if !confirm(cmd.InOrStdin(), out, yes, question) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			err := a.svc.Forget(cmd.Context(), id, fragment.WithVariant(variant), fragment.WithVersion(version))
			if err != nil {
				return fmt.Errorf("unable to forget fragment: %w", err)
			}
			if !a.svc.IsEnabled() {
				fmt.Fprintln(out, "Fragment caching is disabled; nothing was removed.")
				return nil
			}
			fmt.Fprintf(out, "Forgot identifier=%s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&id, "identifier", "i", "", "fragment identifier (e.g., customer:123)")
	cmd.Flags().StringVar(&variant, "variant", "default", "fragment variant")
	cmd.Flags().StringVar(&version, "version", "1.0", "fragment version")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("identifier")
	return cmd
}

// newForgetPatternCmd flushes the whole store: most backends cannot delete
// by pattern.
func newForgetPatternCmd(a *app) *cobra.Command {
	var (
		pattern, variant, version string
		yes                       bool
	)

	cmd := &cobra.Command{
		Use:   "forget-pattern",
		Short: "Forget fragments matching a pattern (flushes the whole store)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			question := fmt.Sprintf("Delete keys matching pattern=%s with variant=%s and version=%s?", pattern, variant, version)
			if !confirm(cmd.InOrStdin(), out, yes, question) {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			if err := a.svc.FlushAll(cmd.Context()); err != nil {
				return fmt.Errorf("pattern deletion failed: %w", err)
			}
			fmt.Fprintf(out, "Flushed all fragments from cache store: %s (pattern-based deletion not supported by all cache drivers)\n",
				a.svc.BackendName())
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "key pattern (e.g., *customer:*)")
	cmd.Flags().StringVar(&variant, "variant", "default", "fragment variant")
	cmd.Flags().StringVar(&version, "version", "1.0", "fragment version")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func newFlushCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Flush ALL entries of the configured store",
		Long: "Flush removes every entry of the configured cache store, including " +
			"entries written by other applications sharing it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !confirm(cmd.InOrStdin(), out, yes, "This will flush ALL fragment-cache entries. Continue?") {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			if err := a.svc.FlushAll(cmd.Context()); err != nil {
				return fmt.Errorf("unable to flush cache: %w", err)
			}
			fmt.Fprintf(out, "Flushed all fragments from cache store: %s\n", a.svc.BackendName())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

type infoOutput struct {
	fragment.BackendInfo
	Enabled bool   `json:"enabled"`
	Variant string `json:"variant"`
	Version string `json:"version"`
	TTL     string `json:"default_ttl"`
}

func newInfoCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := a.svc.BackendInfo()
			if err != nil {
				return err
			}
			cfg := a.svc.Config()
			res := infoOutput{
				BackendInfo: info,
				Enabled:     cfg.IsEnabled(),
				Variant:     cfg.Variant,
				Version:     cfg.Version,
				TTL:         cfg.DefaultTTL,
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Fprintf(out, "store_name:  %s\n", res.Name)
			fmt.Fprintf(out, "store_class: %s\n", res.Type)
			fmt.Fprintf(out, "driver:      %s\n", res.Driver)
			fmt.Fprintf(out, "enabled:     %t\n", res.Enabled)
			fmt.Fprintf(out, "variant:     %s\n", res.Variant)
			fmt.Fprintf(out, "version:     %s\n", res.Version)
			fmt.Fprintf(out, "default_ttl: %s\n", res.TTL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
