package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer(t *testing.T) {
	t.Run("records success", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelDebug, Output: &buf})
		metrics := NewInMemoryMetrics()

		StartTimer("recommend").WithLogger(logger).WithMetrics(metrics).Stop(context.Background())

		op := T(OperationKey, "recommend")
		assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, op))
		assert.Equal(t, int64(0), metrics.GetCounter(MetricOperationErrors, op))
		assert.Len(t, metrics.GetTimings(MetricOperationDuration, op), 1)
		assert.Contains(t, buf.String(), "operation completed")
	})

	t.Run("records errors", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Output: &buf})
		metrics := NewInMemoryMetrics()

		StartTimer("book").
			WithLogger(logger).
			WithMetrics(metrics).
			WithTags(T("provider", "caldav")).
			StopWithError(context.Background(), errors.New("calendar offline"))

		tags := []Tag{T("provider", "caldav"), T(OperationKey, "book")}
		assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationErrors, tags...))
		assert.Contains(t, buf.String(), "calendar offline")
	})

	t.Run("works without sinks", func(t *testing.T) {
		timer := StartTimer("noop")
		assert.GreaterOrEqual(t, timer.Elapsed().Nanoseconds(), int64(0))
		assert.NotPanics(t, func() { timer.Stop(context.Background()) })
	})
}

func TestTimeOperation(t *testing.T) {
	metrics := NewInMemoryMetrics()
	boom := errors.New("boom")

	err := TimeOperation(context.Background(), nil, metrics, "complete", func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationErrors, T(OperationKey, "complete")))

	n, err := TimeOperationResult(context.Background(), nil, metrics, "count", func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, T(OperationKey, "count")))
}
