package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the store, calendar and broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return fmt.Errorf("app not initialized")
		}

		health := app.Health.Check(cmd.Context())
		out := cmd.OutOrStdout()

		if healthJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(health); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "%s\n", health.Status)
			for _, name := range health.Names() {
				check := health.Checks[name]
				fmt.Fprintf(out, "  %-10s %-9s %s (%s)\n", name, check.Status, check.Message, check.Duration.Round(time.Millisecond))
			}
		}

		if health.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(healthCmd)
}
