package slots

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	completeHour  int
	completeAsync bool
)

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Record that a task was finished",
	Long: `Record a task completion so future recommendations favour the hour
it was finished in.

Examples:
  slotwise slots complete
  slotwise slots complete 550e8400-e29b-41d4-a716-446655440000 --hour 10
  slotwise slots complete --async`,
	Aliases: []string{"done"},
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		taskID := uuid.New()
		if len(args) == 1 {
			taskID, err = uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}
		}

		completedAt := now()
		hour := completedAt.Hour()
		if cmd.Flags().Changed("hour") {
			hour = completeHour
			completedAt = time.Date(completedAt.Year(), completedAt.Month(), completedAt.Day(),
				hour, 0, 0, 0, completedAt.Location())
		}
		if !domain.ValidHour(hour) {
			return fmt.Errorf("failed to record completion: %w", domain.ErrInvalidHour)
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if completeAsync {
			if app.Completions == nil {
				return fmt.Errorf("event publishing not configured")
			}
			event := domain.NewTaskCompleted(taskID, completedAt)
			if err := app.Completions.EmitTaskCompleted(ctx, event); err != nil {
				return fmt.Errorf("failed to publish completion: %w", err)
			}
			fmt.Fprintf(out, "Completion published for %s at %02d:00\n", taskID, hour)
			return nil
		}

		result, err := app.RecordCompletionHandler.Handle(ctx, commands.RecordCompletionCommand{
			TaskID: taskID,
			Hour:   hour,
		})
		if err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}

		fmt.Fprintf(out, "Focus score for %02d:00: %d -> %d\n", result.Hour, result.PreviousScore, result.Score)
		return nil
	},
}

func init() {
	completeCmd.Flags().IntVar(&completeHour, "hour", 0, "hour the task was finished (default now)")
	completeCmd.Flags().BoolVar(&completeAsync, "async", false, "publish a completion event instead of updating directly")
}
