package subscribers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// completedPayload mirrors the JSON payload of domain.TaskCompleted.
type completedPayload struct {
	TaskID uuid.UUID `json:"task_id"`
	Hour   int       `json:"hour"`
}

// CompletionSubscriber feeds task completions from the event bus into the
// focus-pattern store.
type CompletionSubscriber struct {
	handler *commands.RecordCompletionHandler
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewCompletionSubscriber creates a new completion subscriber.
func NewCompletionSubscriber(handler *commands.RecordCompletionHandler, metrics observability.Metrics, logger *slog.Logger) *CompletionSubscriber {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionSubscriber{
		handler: handler,
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *CompletionSubscriber) EventTypes() []string {
	return []string{domain.RoutingKeyTaskCompleted}
}

// Handle records the completion carried by event. Events that can never
// succeed (an undecodable payload or an hour out of range) are logged and
// acknowledged; only store failures are returned for redelivery.
func (s *CompletionSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload completedPayload
	if err := event.Decode(&payload); err != nil {
		s.drop(event, "malformed_payload")
		s.logger.WarnContext(ctx, "dropping completion with malformed payload",
			"event_id", event.EventID,
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return nil
	}

	if event.Metadata.CorrelationID != "" {
		ctx = observability.WithCorrelationID(ctx, event.Metadata.CorrelationID)
	}
	s.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))

	_, err := s.handler.Handle(ctx, commands.RecordCompletionCommand{
		TaskID:      payload.TaskID,
		Hour:        payload.Hour,
		CausationID: event.EventID.String(),
	})
	if errors.Is(err, domain.ErrInvalidHour) {
		s.drop(event, "invalid_hour")
		s.logger.WarnContext(ctx, "dropping completion with invalid hour",
			"event_id", event.EventID,
			"task_id", payload.TaskID,
			"hour", payload.Hour,
		)
		return nil
	}
	return err
}

func (s *CompletionSubscriber) drop(event *eventbus.ConsumedEvent, reason string) {
	s.metrics.Counter(observability.MetricEventsDropped, 1,
		observability.T("routing_key", event.RoutingKey),
		observability.T("reason", reason),
	)
}
