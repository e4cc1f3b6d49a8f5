package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/slotwise/internal/calendar/application"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// BookSlotCommand writes a recommended slot into the user's calendar.
type BookSlotCommand struct {
	Task           domain.Task
	Recommendation domain.Recommendation
}

// BookSlotResult identifies the created calendar event.
type BookSlotResult struct {
	EventID string
	Start   time.Time
	End     time.Time
}

// BookSlotHandler handles the BookSlotCommand.
type BookSlotHandler struct {
	booker    calendarApp.SlotBooker
	conflicts *calendarApp.ConflictDetector
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewBookSlotHandler creates a new BookSlotHandler. A nil conflicts
// detector skips the pre-booking check.
func NewBookSlotHandler(
	booker calendarApp.SlotBooker,
	conflicts *calendarApp.ConflictDetector,
	metrics observability.Metrics,
	logger *slog.Logger,
) *BookSlotHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookSlotHandler{
		booker:    booker,
		conflicts: conflicts,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the BookSlotCommand.
func (h *BookSlotHandler) Handle(ctx context.Context, cmd BookSlotCommand) (*BookSlotResult, error) {
	task := cmd.Task.Normalized()
	id := task.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	booking := calendarApp.Booking{
		ID:              id,
		Title:           task.Title,
		Start:           cmd.Recommendation.StartTime(),
		Duration:        time.Duration(task.EstimatedDurationMinutes) * time.Minute,
		Reason:          cmd.Recommendation.Reason.Description(),
		ReminderMinutes: calendarApp.DefaultReminderMinutes,
	}
	if err := booking.Validate(); err != nil {
		return nil, err
	}

	if h.conflicts != nil {
		found, err := h.conflicts.CheckConflicts(ctx, booking)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return nil, fmt.Errorf("%w: %s at %s", calendarApp.ErrSlotConflict,
				found[0].Event.Summary, found[0].Event.StartTime.Format(time.Kitchen))
		}
	}

	timer := observability.StartTimer("book_slot").WithLogger(h.logger).WithMetrics(h.metrics)
	eventID, err := h.booker.Book(ctx, booking)
	timer.StopWithError(ctx, err)
	if err != nil {
		return nil, fmt.Errorf("book slot: %w", err)
	}

	h.metrics.Counter(observability.MetricSlotsBooked, 1)
	h.logger.InfoContext(ctx, "slot booked",
		"event_id", eventID,
		"start", booking.Start.Format(time.RFC3339),
		"duration_min", task.EstimatedDurationMinutes,
	)

	return &BookSlotResult{EventID: eventID, Start: booking.Start, End: booking.End()}, nil
}
