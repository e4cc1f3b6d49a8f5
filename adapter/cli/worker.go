package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Learn from task completions published to RabbitMQ",
	Long: `Consume recommendation.task.completed events from the broker and
update the learned focus scores. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.NewWorker == nil {
			return fmt.Errorf("app not initialized")
		}

		consumer, err := app.NewWorker()
		if err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
		defer func() {
			if err := consumer.Close(); err != nil {
				logger.Warn("error closing consumer", "error", err)
			}
		}()

		fmt.Fprintln(cmd.OutOrStdout(), "worker started, waiting for completions")
		err = consumer.Start(cmd.Context())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
