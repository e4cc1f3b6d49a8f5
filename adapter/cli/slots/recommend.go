package slots

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	recPriority string
	recDuration int
	recDate     string
	recMinute   int
	recTitle    string
	recLang     string
	recBook     bool
	recJSON     bool
)

type recommendationView struct {
	Time         string `json:"time"`
	Start        string `json:"start"`
	Overall      int    `json:"overall_score"`
	Focus        int    `json:"focus_score"`
	Availability int    `json:"availability_score"`
	Reason       string `json:"reason"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest the best start times for a task",
	Long: `Suggest up to three start times for a task on a day.

Examples:
  slotwise slots recommend --priority high --duration 90
  slotwise slots recommend --date 2026-10-16 --lang ko
  slotwise slots recommend --title "Write report" --book`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireApp()
		if err != nil {
			return err
		}

		priority, err := domain.ParsePriority(recPriority)
		if err != nil {
			return fmt.Errorf("invalid priority %q: use high, medium or low", recPriority)
		}
		if recMinute < 0 || recMinute > 59 {
			return fmt.Errorf("minute must be between 0 and 59")
		}

		current := now()
		date := current
		if recDate != "" {
			date, err = time.ParseInLocation(time.DateOnly, recDate, current.Location())
			if err != nil {
				return fmt.Errorf("invalid date %q: use YYYY-MM-DD", recDate)
			}
		}

		task := domain.Task{
			ID:                       uuid.New(),
			Title:                    recTitle,
			Priority:                 priority,
			EstimatedDurationMinutes: recDuration,
			TargetDate:               date,
			PreferredMinute:          recMinute,
		}

		ctx := cmd.Context()
		result, err := app.RecommendSlotsHandler.Handle(ctx, queries.RecommendSlotsQuery{Task: task, Now: current})
		if err != nil {
			return fmt.Errorf("failed to recommend slots: %w", err)
		}

		out := cmd.OutOrStdout()
		if recJSON {
			if err := writeJSON(out, result.Recommendations); err != nil {
				return err
			}
		} else {
			writeTable(out, result)
		}

		if !recBook || len(result.Recommendations) == 0 {
			return nil
		}
		if app.BookSlotHandler == nil {
			return fmt.Errorf("booking requires CALENDAR_SOURCE=caldav")
		}

		booked, err := app.BookSlotHandler.Handle(ctx, commands.BookSlotCommand{
			Task:           task,
			Recommendation: result.Recommendations[0],
		})
		if err != nil {
			return fmt.Errorf("failed to book slot: %w", err)
		}
		fmt.Fprintf(out, "Booked %s-%s (%s)\n",
			booked.Start.Format(time.Kitchen), booked.End.Format(time.Kitchen), booked.EventID)
		return nil
	},
}

func writeTable(out io.Writer, result *queries.RecommendSlotsResult) {
	day := result.Date.Format("Mon Jan 2")
	if len(result.Recommendations) == 0 {
		fmt.Fprintf(out, "No free slots left on %s.\n", day)
		return
	}

	fmt.Fprintf(out, "Best slots on %s:\n", day)
	for i, r := range result.Recommendations {
		fmt.Fprintf(out, "%d. %-10s overall %3d  focus %3d  availability %3d  %s\n",
			i+1, r.TimeString(recLang), r.OverallScore, r.FocusScore, r.AvailabilityScore, r.Reason)
		fmt.Fprintf(out, "   %s\n", r.Reason.Description())
	}
}

func writeJSON(out io.Writer, recs []domain.Recommendation) error {
	views := make([]recommendationView, 0, len(recs))
	for _, r := range recs {
		views = append(views, recommendationView{
			Time:         r.TimeString(recLang),
			Start:        r.StartTime().Format(time.RFC3339),
			Overall:      r.OverallScore,
			Focus:        r.FocusScore,
			Availability: r.AvailabilityScore,
			Reason:       r.Reason.String(),
			Description:  r.Reason.Description(),
			Icon:         r.Reason.Icon(),
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func init() {
	recommendCmd.Flags().StringVarP(&recPriority, "priority", "p", "medium", "task priority: high, medium, low")
	recommendCmd.Flags().IntVarP(&recDuration, "duration", "d", domain.DefaultDurationMinutes, "estimated duration in minutes")
	recommendCmd.Flags().StringVar(&recDate, "date", "", "target day as YYYY-MM-DD (default today)")
	recommendCmd.Flags().IntVar(&recMinute, "minute", 0, "preferred minute past the hour")
	recommendCmd.Flags().StringVarP(&recTitle, "title", "t", "", "task title, used when booking")
	recommendCmd.Flags().StringVar(&recLang, "lang", "en", "time format language: en, ko, ja, zh-Hans")
	recommendCmd.Flags().BoolVar(&recBook, "book", false, "book the top slot in the calendar")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "print JSON")
}
