package slots

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/spf13/cobra"
)

var patternsAll bool

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show learned focus scores by hour",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}
		if app.Patterns == nil {
			return fmt.Errorf("focus patterns not available")
		}

		pattern, err := app.Patterns.Snapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load focus patterns: %w", err)
		}

		out := cmd.OutOrStdout()
		if pattern.Len() == 0 && !patternsAll {
			fmt.Fprintln(out, "No completions recorded yet.")
			return nil
		}

		profile := domain.DefaultFocusProfile()
		fmt.Fprintln(out, "HOUR   DEFAULT  LEARNED")
		for hour := 0; hour < domain.HoursPerDay; hour++ {
			learned, ok := pattern.Learned(hour)
			if !ok && !patternsAll {
				continue
			}
			value := "-"
			bar := ""
			if ok {
				value = fmt.Sprintf("%d", learned)
				bar = strings.Repeat("#", learned/10)
			}
			fmt.Fprintf(out, "%02d:00  %7d  %7s  %s\n", hour, profile.DefaultScore(hour), value, bar)
		}
		return nil
	},
}

func init() {
	patternsCmd.Flags().BoolVarP(&patternsAll, "all", "a", false, "include hours without completions")
}
