package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConsumer struct {
	startErr error
	started  bool
	closed   bool
}

func (c *stubConsumer) Start(context.Context) error {
	c.started = true
	return c.startErr
}

func (c *stubConsumer) RegisterConsumer(eventbus.EventConsumer) {}

func (c *stubConsumer) Close() error {
	c.closed = true
	return nil
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	healthJSON = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func withApp(t *testing.T, a *App) {
	t.Helper()
	SetApp(a)
	t.Cleanup(func() { SetApp(nil) })
}

func TestHealthCommand(t *testing.T) {
	health := observability.NewHealthRegistry()
	health.Register("store", observability.PingChecker("sqlite", observability.HealthStatusUnhealthy,
		func(context.Context) error { return nil }))
	health.Register("broker", observability.PingChecker("rabbitmq", observability.HealthStatusDegraded,
		func(context.Context) error { return errors.New("connection refused") }))
	withApp(t, NewApp(nil, nil, nil, nil, nil, health))

	out, err := execute(t, "health")
	require.NoError(t, err)

	assert.Contains(t, out, "degraded\n")
	assert.Contains(t, out, "rabbitmq unreachable: connection refused")
	assert.Contains(t, out, "sqlite reachable")
	assert.Less(t, bytes.Index([]byte(out), []byte("broker")), bytes.Index([]byte(out), []byte("store")))
}

func TestHealthCommand_Unhealthy(t *testing.T) {
	health := observability.NewHealthRegistry()
	health.Register("store", observability.PingChecker("postgres", observability.HealthStatusUnhealthy,
		func(context.Context) error { return errors.New("timeout") }))
	withApp(t, NewApp(nil, nil, nil, nil, nil, health))

	out, err := execute(t, "health", "--json")
	assert.EqualError(t, err, "unhealthy")
	assert.Contains(t, out, `"unhealthy"`)
}

func TestHealthCommand_NoApp(t *testing.T) {
	withApp(t, nil)

	_, err := execute(t, "health")
	assert.EqualError(t, err, "app not initialized")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "slotwise dev")
}

func TestWorkerCommand(t *testing.T) {
	consumer := &stubConsumer{startErr: context.Canceled}
	a := NewApp(nil, nil, nil, nil, nil, nil)
	a.SetWorkerFactory(func() (eventbus.Consumer, error) { return consumer, nil })
	withApp(t, a)

	out, err := execute(t, "worker")
	require.NoError(t, err)
	assert.Contains(t, out, "worker started")
	assert.True(t, consumer.started)
	assert.True(t, consumer.closed)
}

func TestWorkerCommand_FactoryError(t *testing.T) {
	a := NewApp(nil, nil, nil, nil, nil, nil)
	a.SetWorkerFactory(func() (eventbus.Consumer, error) {
		return nil, errors.New("RABBITMQ_URL is required to run the worker")
	})
	withApp(t, a)

	_, err := execute(t, "worker")
	assert.ErrorContains(t, err, "RABBITMQ_URL is required")
}
