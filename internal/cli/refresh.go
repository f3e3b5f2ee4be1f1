package cli

import (
	"fmt"
	"slices"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mpavel/homescreen/internal/logging"
	"github.com/mpavel/homescreen/internal/refresh"
	"github.com/mpavel/homescreen/internal/state"
)

// newRefreshCmd builds the one-shot refresh: fetch both domains for a user,
// warm their cache, and print the rendered panels. Useful from cron so the
// dashboard opens onto fresh data.
func newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch weather and news once and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := servicesFromFlags(cmd)
			if err != nil {
				return err
			}

			if user, _ := cmd.Flags().GetString("user"); user != "" && user != state.Guest {
				names, err := svc.auth.List()
				if err != nil {
					return err
				}
				if !slices.Contains(names, user) {
					return fmt.Errorf("no account named %q", user)
				}
				svc.session.Switch(user)
			}
			settings := svc.cfg.Load(svc.sync.CurrentUser())
			if city, _ := cmd.Flags().GetString("city"); city != "" {
				settings.City = city
			}
			if topic, _ := cmd.Flags().GetString("topic"); topic != "" {
				settings.Topic = topic
			}

			var (
				mu sync.Mutex
				wv refresh.WeatherView
				nv refresh.NewsView
			)
			svc.sync.Attach(func(msg any) {
				mu.Lock()
				defer mu.Unlock()
				wv = wv.Apply(msg)
				nv = nv.Apply(msg)
			})
			defer svc.sync.Release()

			ctx := logging.WithContext(cmd.Context())
			svc.orch.Weather(ctx, settings.City, settings.Celsius)
			svc.orch.News(ctx, settings.Topic)
			svc.orch.Wait()

			mu.Lock()
			defer mu.Unlock()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Weather (%s) — %s\n", settings.City, wv.Status)
			for _, r := range wv.Rows {
				fmt.Fprintf(out, "  %-6s %-7s %-24s %s\n", r.Time, r.Temp, r.Summary, r.Precipitation)
			}
			fmt.Fprintf(out, "\nNews — %s\n", nv.Status)
			for _, a := range nv.Articles {
				fmt.Fprintf(out, "  %s (%s)\n", a.Title, a.Source)
			}
			return nil
		},
	}

	cmd.Flags().String("user", "", "refresh this account's namespace (default: guest)")
	cmd.Flags().String("city", "", "override the configured city")
	cmd.Flags().String("topic", "", "override the configured news topic")
	return cmd
}
