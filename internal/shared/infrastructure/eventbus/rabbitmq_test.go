package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type recordingConsumer struct {
	events []*ConsumedEvent
	err    error
}

func (r *recordingConsumer) EventTypes() []string { return []string{"recommendation.task.completed"} }

func (r *recordingConsumer) Handle(_ context.Context, event *ConsumedEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRabbitMQPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitMQPublisher{channel: ch, exchange: ExchangeName, logger: quietLogger()}

	require.NoError(t, p.Publish(context.Background(), "recommendation.task.completed", []byte(`{"a":1}`)))

	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, "recommendation.task.completed", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.JSONEq(t, `{"a":1}`, string(ch.msg.Body))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitMQPublisher_PublishError(t *testing.T) {
	errDown := errors.New("channel closed")
	p := &RabbitMQPublisher{channel: &fakeChannel{err: errDown}, exchange: ExchangeName, logger: quietLogger()}

	err := p.Publish(context.Background(), "recommendation.task.completed", nil)
	assert.ErrorIs(t, err, errDown)
}

func TestNewPublishing(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	msg := newPublishing([]byte("x"), now)
	assert.Equal(t, now, msg.Timestamp)
	assert.Equal(t, []byte("x"), msg.Body)
}

func TestRabbitMQConsumer_ProcessMessage(t *testing.T) {
	registry := NewConsumerRegistry(quietLogger())
	handler := &recordingConsumer{}
	registry.Register(handler)
	c := &RabbitMQConsumer{registry: registry, logger: quietLogger()}

	body := []byte(`{"event_id":"8f8c5e0e-6f5c-4d0a-9a64-5d7c2a3b1e10","payload":{"hour":9}}`)
	require.NoError(t, c.processMessage(context.Background(), "recommendation.task.completed", body))

	require.Len(t, handler.events, 1)
	assert.Equal(t, "recommendation.task.completed", handler.events[0].RoutingKey)

	var payload struct{ Hour int }
	require.NoError(t, handler.events[0].Decode(&payload))
	assert.Equal(t, 9, payload.Hour)
}

func TestRabbitMQConsumer_ProcessMessage_BadBodyIsDropped(t *testing.T) {
	registry := NewConsumerRegistry(quietLogger())
	handler := &recordingConsumer{}
	registry.Register(handler)
	c := &RabbitMQConsumer{registry: registry, logger: quietLogger()}

	assert.NoError(t, c.processMessage(context.Background(), "recommendation.task.completed", []byte("{")))
	assert.Empty(t, handler.events)
}

func TestRabbitMQConsumer_ProcessMessage_HandlerErrorRequeues(t *testing.T) {
	registry := NewConsumerRegistry(quietLogger())
	errBoom := errors.New("boom")
	registry.Register(&recordingConsumer{err: errBoom})
	c := &RabbitMQConsumer{registry: registry, logger: quietLogger()}

	err := c.processMessage(context.Background(), "recommendation.task.completed", []byte(`{}`))
	assert.ErrorIs(t, err, errBoom)
}
