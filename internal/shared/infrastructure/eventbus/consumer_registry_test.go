package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/eventbus"
)

const (
	keyCompleted = "recommendation.task.completed"
	keyUpdated   = "recommendation.focus_pattern.updated"
)

type mockConsumer struct {
	mu         sync.Mutex
	eventTypes []string
	events     []*eventbus.ConsumedEvent
	err        error
}

func (m *mockConsumer) EventTypes() []string {
	return m.eventTypes
}

func (m *mockConsumer) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockConsumer) received() []*eventbus.ConsumedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventbus.ConsumedEvent(nil), m.events...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestConsumerRegistry_Register(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(testLogger())
	registry.Register(&mockConsumer{eventTypes: []string{keyCompleted, keyUpdated}})

	assert.Len(t, registry.Consumers(keyCompleted), 1)
	assert.Len(t, registry.Consumers(keyUpdated), 1)
	assert.Empty(t, registry.Consumers("unknown.event.type"))
	assert.Equal(t, []string{keyCompleted, keyUpdated}, registry.EventTypes())
	assert.Equal(t, 2, registry.ConsumerCount())
}

func TestConsumerRegistry_Dispatch(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(testLogger())
	first := &mockConsumer{eventTypes: []string{keyCompleted}}
	second := &mockConsumer{eventTypes: []string{keyCompleted}}
	registry.Register(first)
	registry.Register(second)

	event := &eventbus.ConsumedEvent{EventID: uuid.New(), RoutingKey: keyCompleted}
	require.NoError(t, registry.Dispatch(context.Background(), event))

	require.Len(t, first.received(), 1)
	assert.Equal(t, event.EventID, first.received()[0].EventID)
	assert.Len(t, second.received(), 1)
}

func TestConsumerRegistry_DispatchNoConsumers(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(testLogger())
	event := &eventbus.ConsumedEvent{EventID: uuid.New(), RoutingKey: "unknown.event.type"}

	assert.NoError(t, registry.Dispatch(context.Background(), event))
}

func TestConsumerRegistry_DispatchContinuesAfterError(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(testLogger())
	errBoom := errors.New("boom")
	failing := &mockConsumer{eventTypes: []string{keyCompleted}, err: errBoom}
	healthy := &mockConsumer{eventTypes: []string{keyCompleted}}
	registry.Register(failing)
	registry.Register(healthy)

	err := registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{EventID: uuid.New(), RoutingKey: keyCompleted})

	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, failing.received(), 1)
	assert.Len(t, healthy.received(), 1)
}
