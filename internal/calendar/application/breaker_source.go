package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

var (
	ErrCalendarUnavailable = errors.New("calendar temporarily unavailable")
)

// BreakerConfig configures circuit breaking around a calendar provider.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // requests allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // how long the breaker stays open
	FailureThreshold uint32        // consecutive failures that trip the breaker
}

// DefaultBreakerConfig returns a sensible default configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "calendar",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 3,
	}
}

// BreakerSource stops calling a failing calendar provider for a while so
// recommendation requests fail fast instead of waiting on it.
type BreakerSource struct {
	next    CommitmentSource
	breaker *gobreaker.CircuitBreaker[[]CalendarEvent]
	logger  *slog.Logger
}

// NewBreakerSource wraps next with a circuit breaker.
func NewBreakerSource(next CommitmentSource, cfg BreakerConfig, logger *slog.Logger) *BreakerSource {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("calendar circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &BreakerSource{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[[]CalendarEvent](settings),
		logger:  logger,
	}
}

// ListEvents forwards to the wrapped source unless the breaker is open.
func (s *BreakerSource) ListEvents(ctx context.Context, start, end time.Time) ([]CalendarEvent, error) {
	events, err := s.breaker.Execute(func() ([]CalendarEvent, error) {
		return s.next.ListEvents(ctx, start, end)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCalendarUnavailable
	}
	return events, err
}

// State returns the breaker state name.
func (s *BreakerSource) State() string {
	return s.breaker.State().String()
}
