package queries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/slotwise/internal/calendar/application"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/services"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
)

// RecommendSlotsQuery asks for the best start times for a task.
type RecommendSlotsQuery struct {
	Task domain.Task
	Now  time.Time
}

// RecommendSlotsResult is the ranked list plus the commitments it was scored against.
type RecommendSlotsResult struct {
	Date            time.Time
	Recommendations []domain.Recommendation
	Commitments     domain.Commitments
}

// RecommendSlotsHandler reads the day's calendar and ranks the free hours.
type RecommendSlotsHandler struct {
	engine   *services.RecommendationEngine
	calendar calendarApp.CommitmentSource
	metrics  observability.Metrics
	logger   *slog.Logger
}

// NewRecommendSlotsHandler creates a new RecommendSlotsHandler. A nil
// calendar means the user has no commitments.
func NewRecommendSlotsHandler(
	engine *services.RecommendationEngine,
	calendar calendarApp.CommitmentSource,
	metrics observability.Metrics,
	logger *slog.Logger,
) *RecommendSlotsHandler {
	if calendar == nil {
		calendar = calendarApp.NoCommitments{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendSlotsHandler{
		engine:   engine,
		calendar: calendar,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle executes the RecommendSlotsQuery. The task's target date is used
// when set, otherwise the day of Now.
func (h *RecommendSlotsHandler) Handle(ctx context.Context, query RecommendSlotsQuery) (*RecommendSlotsResult, error) {
	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}
	date := query.Task.TargetDate
	if date.IsZero() {
		date = now
	}

	tags := []observability.Tag{observability.T("priority", query.Task.Priority.String())}
	h.metrics.Counter(observability.MetricRecommendationRequests, 1, tags...)

	start, end := calendarApp.DayBounds(date)
	events, err := h.calendar.ListEvents(ctx, start, end)
	if err != nil {
		h.metrics.Counter(observability.MetricCalendarErrors, 1)
		h.logger.WarnContext(ctx, "calendar read failed",
			"date", start.Format(time.DateOnly),
			"error", err,
		)
		return nil, fmt.Errorf("read commitments for %s: %w", start.Format(time.DateOnly), err)
	}

	commitments := calendarApp.BuildCommitments(events, date)
	recs := h.engine.Recommend(ctx, query.Task, commitments, date, now)

	h.metrics.Histogram(observability.MetricRecommendationsReturned, float64(len(recs)), tags...)
	if len(recs) == 0 {
		h.metrics.Counter(observability.MetricRecommendationsEmpty, 1, tags...)
	}

	return &RecommendSlotsResult{
		Date:            start,
		Recommendations: recs,
		Commitments:     commitments,
	}, nil
}
