package slots

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/spf13/cobra"
)

// now is replaced in tests.
var now = time.Now

// Cmd is the parent command for slot recommendations and learning.
var Cmd = &cobra.Command{
	Use:   "slots",
	Short: "Recommend time slots and record completions",
}

func init() {
	Cmd.AddCommand(recommendCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(patternsCmd)
}

func requireApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.RecommendSlotsHandler == nil {
		return nil, fmt.Errorf("application not initialized - check SLOTWISE_STORE and database settings")
	}
	return app, nil
}
