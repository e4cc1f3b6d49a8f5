package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/services"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	sharedApplication "github.com/felixgeelhaar/slotwise/internal/shared/application"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// CompletionRecorder is the write side of the focus-pattern store.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, hour int) (services.CompletionResult, error)
}

// RecordCompletionCommand reports that a task was finished during Hour.
type RecordCompletionCommand struct {
	TaskID      uuid.UUID
	Hour        int
	CausationID string // ID of the event that triggered the command, if any
}

// RecordCompletionHandler handles the RecordCompletionCommand.
type RecordCompletionHandler struct {
	store     CompletionRecorder
	publisher eventbus.Publisher
	userID    uuid.UUID
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewRecordCompletionHandler creates a new RecordCompletionHandler.
// A nil publisher drops the FocusPatternUpdated event.
func NewRecordCompletionHandler(
	store CompletionRecorder,
	publisher eventbus.Publisher,
	userID uuid.UUID,
	metrics observability.Metrics,
	logger *slog.Logger,
) *RecordCompletionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &RecordCompletionHandler{
		store:     store,
		publisher: publisher,
		userID:    userID,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the RecordCompletionCommand. The learned score is the
// source of truth; a failed publish is logged and does not fail the command.
func (h *RecordCompletionHandler) Handle(ctx context.Context, cmd RecordCompletionCommand) (services.CompletionResult, error) {
	result, err := h.store.RecordCompletion(ctx, cmd.Hour)
	if err != nil {
		return services.CompletionResult{}, err
	}

	h.metrics.Counter(observability.MetricCompletionsRecorded, 1)
	h.metrics.Gauge(observability.MetricFocusScore, float64(result.Score), observability.T("hour", hourTag(result.Hour)))

	event := domain.NewFocusPatternUpdated(h.userID, cmd.TaskID, result.Hour, result.PreviousScore, result.Score, result.Strategy)
	event.SetMetadata(sharedApplication.NewEventMetadata(ctx, h.userID, cmd.CausationID))

	if err := eventbus.PublishDomainEvent(ctx, h.publisher, event); err != nil {
		h.logger.WarnContext(ctx, "failed to publish focus pattern update",
			"hour", result.Hour,
			"error", err,
		)
	} else {
		h.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
	}

	h.logger.InfoContext(ctx, "completion recorded",
		"task_id", cmd.TaskID,
		"hour", result.Hour,
		"score", result.Score,
	)

	return result, nil
}

func hourTag(hour int) string {
	return fmt.Sprintf("%02d", hour)
}
