package commands

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/services"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/infrastructure/persistence"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	routingKey string
	payload    []byte
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, published{routingKey: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newStore() *services.FocusPatternStore {
	return services.NewFocusPatternStore(persistence.NewInMemoryFocusPatternRepository(), nil, nil)
}

func TestRecordCompletionHandler_Handle(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()
	publisher := &recordingPublisher{}
	metrics := observability.NewInMemoryMetrics()
	handler := NewRecordCompletionHandler(newStore(), publisher, userID, metrics, nil)

	ctx := observability.WithCorrelationID(context.Background(), "corr-1")
	result, err := handler.Handle(ctx, RecordCompletionCommand{TaskID: taskID, Hour: 9, CausationID: "evt-1"})
	require.NoError(t, err)

	assert.Equal(t, 9, result.Hour)
	assert.Equal(t, 50, result.PreviousScore)
	assert.Equal(t, 55, result.Score)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCompletionsRecorded))
	assert.Equal(t, 55.0, metrics.GetGauge(observability.MetricFocusScore, observability.T("hour", "09")))

	require.Len(t, publisher.messages, 1)
	msg := publisher.messages[0]
	assert.Equal(t, domain.RoutingKeyFocusPatternUpdated, msg.routingKey)

	var envelope eventbus.ConsumedEvent
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	assert.Equal(t, userID, envelope.AggregateID)
	assert.Equal(t, "corr-1", envelope.Metadata.CorrelationID)
	assert.Equal(t, "evt-1", envelope.Metadata.CausationID)

	var updated struct {
		TaskID        uuid.UUID `json:"task_id"`
		Hour          int       `json:"hour"`
		PreviousScore int       `json:"previous_score"`
		Score         int       `json:"score"`
	}
	require.NoError(t, envelope.Decode(&updated))
	assert.Equal(t, taskID, updated.TaskID)
	assert.Equal(t, 9, updated.Hour)
	assert.Equal(t, 50, updated.PreviousScore)
	assert.Equal(t, 55, updated.Score)
}

func TestRecordCompletionHandler_Accumulates(t *testing.T) {
	handler := NewRecordCompletionHandler(newStore(), nil, uuid.New(), nil, nil)

	var last services.CompletionResult
	for i := 0; i < 12; i++ {
		var err error
		last, err = handler.Handle(context.Background(), RecordCompletionCommand{Hour: 14})
		require.NoError(t, err)
	}

	assert.Equal(t, 100, last.Score)
	assert.Equal(t, 100, last.PreviousScore)
}

func TestRecordCompletionHandler_InvalidHour(t *testing.T) {
	publisher := &recordingPublisher{}
	handler := NewRecordCompletionHandler(newStore(), publisher, uuid.New(), nil, nil)

	_, err := handler.Handle(context.Background(), RecordCompletionCommand{Hour: 24})

	assert.ErrorIs(t, err, domain.ErrInvalidHour)
	assert.Empty(t, publisher.messages)
}

func TestRecordCompletionHandler_PublishFailureKeepsScore(t *testing.T) {
	store := newStore()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	handler := NewRecordCompletionHandler(store, publisher, uuid.New(), nil, nil)

	result, err := handler.Handle(context.Background(), RecordCompletionCommand{Hour: 8})
	require.NoError(t, err)
	assert.Equal(t, 55, result.Score)

	pattern, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	score, ok := pattern.Learned(8)
	assert.True(t, ok)
	assert.Equal(t, 55, score)
}
