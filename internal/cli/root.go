// Package cli defines the homescreen command tree. The bare command launches
// the full-screen dashboard; subcommands cover account management and
// one-shot refreshes for scripting.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpavel/homescreen/internal/logging"
	"github.com/mpavel/homescreen/internal/store"
	"github.com/mpavel/homescreen/internal/tui"
)

// NewRootCmd creates the root command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "homescreen",
		Short: "Personal dashboard for weather and news",
		Long: "Homescreen is a terminal dashboard showing the hourly weather forecast\n" +
			"and top news stories, cached per user so the last good data survives\n" +
			"being offline.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			file, _ := cmd.Flags().GetString("log-file")
			return logging.Init(level, file)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logging.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := servicesFromFlags(cmd)
			if err != nil {
				return err
			}
			app := tui.NewApp(tui.Options{
				Session:   svc.session,
				Config:    svc.cfg,
				Sync:      svc.sync,
				Refresher: svc.orch,
				Settings:  svc.cfg.Load(svc.sync.CurrentUser()),
				Version:   version,
			})
			return tui.Run(app)
		},
	}

	cmd.PersistentFlags().String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().String("log-file", "", "append logs to this file instead of stderr")
	cmd.PersistentFlags().String("config-dir", "", "settings and accounts directory (default: XDG config dir)")
	cmd.PersistentFlags().String("cache-dir", "", "cache directory (default: XDG cache dir)")
	cmd.PersistentFlags().Duration("cache-ttl", store.DefaultTTL, "how long cached data counts as fresh")

	cmd.AddCommand(newUserCmd(), newRefreshCmd())
	return cmd
}

// servicesFromFlags wires the service graph from the persistent flags.
func servicesFromFlags(cmd *cobra.Command) (*services, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	ttl, _ := cmd.Flags().GetDuration("cache-ttl")
	if ttl < 0 {
		return nil, fmt.Errorf("cache-ttl must be >= 0, got %s", ttl)
	}
	return buildServices(configDir, cacheDir, ttl)
}

// Execute runs the CLI and exits non-zero on error.
func Execute(version string) {
	cmd := NewRootCmd(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
