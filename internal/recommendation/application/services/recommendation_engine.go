package services

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
)

// PatternSource supplies learned focus scores to the engine.
type PatternSource interface {
	Snapshot(ctx context.Context) (domain.FocusPattern, error)
}

// EngineConfig contains the tunable weights of the recommendation engine.
type EngineConfig struct {
	WorkStartHour int // first candidate hour
	WorkEndHour   int // last candidate hour, inclusive
	MaxResults    int

	FocusWeight        float64 // share of focus in the overall score
	AvailabilityWeight float64 // share of availability in the overall score
	DefaultFocusBlend  float64 // share of the static table when a learned score exists
	LearnedFocusBlend  float64 // share of the learned score when it exists

	TopPreferredBonus int
	PreferredBonus    int

	AdjacentPenalty  int // applied once for a busy hour before and once after
	BusyDayPenalty   int
	BusyDayThreshold int // penalty applies when total commitments exceed this
}

// DefaultEngineConfig returns the standard weights.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WorkStartHour:      7,
		WorkEndHour:        21,
		MaxResults:         3,
		FocusWeight:        0.6,
		AvailabilityWeight: 0.4,
		DefaultFocusBlend:  0.7,
		LearnedFocusBlend:  0.3,
		TopPreferredBonus:  15,
		PreferredBonus:     5,
		AdjacentPenalty:    20,
		BusyDayPenalty:     10,
		BusyDayThreshold:   5,
	}
}

// RecommendationEngine scores the hours of a day for a task and returns the
// best starting points. It holds no calendar state and is safe for
// concurrent use as long as callers do not share a mutable commitments map.
type RecommendationEngine struct {
	config   EngineConfig
	profile  domain.FocusProfile
	rules    []domain.ReasonRule
	patterns PatternSource
	logger   *slog.Logger
}

// NewRecommendationEngine creates an engine reading learned scores from patterns.
// A nil patterns source means no learned scores.
func NewRecommendationEngine(config EngineConfig, patterns PatternSource, logger *slog.Logger) *RecommendationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultEngineConfig().MaxResults
	}
	return &RecommendationEngine{
		config:   config,
		profile:  domain.DefaultFocusProfile(),
		rules:    domain.DefaultReasonRules(),
		patterns: patterns,
		logger:   logger,
	}
}

// WithProfile replaces the focus table and priority preferences.
func (e *RecommendationEngine) WithProfile(profile domain.FocusProfile) *RecommendationEngine {
	e.profile = profile
	return e
}

// WithReasonRules replaces the reason rule list.
func (e *RecommendationEngine) WithReasonRules(rules []domain.ReasonRule) *RecommendationEngine {
	e.rules = rules
	return e
}

// Config returns the engine configuration.
func (e *RecommendationEngine) Config() EngineConfig {
	return e.config
}

type scoredSlot struct {
	rec   domain.Recommendation
	facts domain.SlotFacts
}

// Recommend returns up to MaxResults start times on date for task, best first.
// now only decides which hours of today have already passed. An empty result
// means nothing fits; it is not an error.
func (e *RecommendationEngine) Recommend(
	ctx context.Context,
	task domain.Task,
	commitments domain.Commitments,
	date time.Time,
	now time.Time,
) []domain.Recommendation {
	task = task.Normalized()

	startHour, endHour := e.candidateRange(date, now)
	if startHour > endHour {
		return []domain.Recommendation{}
	}

	pattern := e.loadPattern(ctx)
	durationHours := task.DurationHours()

	candidates := make([]scoredSlot, 0, endHour-startHour+1)
	for hour := startHour; hour <= endHour; hour++ {
		availability := e.AvailabilityScore(hour, durationHours, commitments)
		if availability <= 0 {
			continue
		}

		focus := e.FocusScore(hour, task.Priority, pattern)
		learned, hasLearned := pattern.Learned(hour)

		candidates = append(candidates, scoredSlot{
			rec: domain.Recommendation{
				Date:              date,
				Hour:              hour,
				Minute:            task.PreferredMinute,
				FocusScore:        focus,
				AvailabilityScore: availability,
				OverallScore:      e.OverallScore(focus, availability),
			},
			facts: domain.SlotFacts{
				Hour:              hour,
				FocusScore:        focus,
				AvailabilityScore: availability,
				LearnedScore:      learned,
				HasLearned:        hasLearned,
				TopPreferred:      e.profile.IsTopPreferred(task.Priority, hour),
			},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rec.OverallScore > candidates[j].rec.OverallScore
	})

	if len(candidates) > e.config.MaxResults {
		candidates = candidates[:e.config.MaxResults]
	}

	results := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		c.rec.Reason = domain.SelectReason(e.rules, c.facts)
		results = append(results, c.rec)
	}

	e.logger.Debug("slots recommended",
		"priority", task.Priority.String(),
		"duration_min", task.EstimatedDurationMinutes,
		"start_hour", startHour,
		"end_hour", endHour,
		"returned", len(results),
	)

	return results
}

// AvailabilityScore rates how free hour is for a task spanning durationHours.
// Zero means the span overlaps a commitment.
func (e *RecommendationEngine) AvailabilityScore(hour, durationHours int, commitments domain.Commitments) int {
	if durationHours < 1 {
		durationHours = 1
	}

	for h := hour; h < hour+durationHours; h++ {
		if commitments.Busy(h) {
			return 0
		}
	}

	score := 100
	if commitments.Busy(hour - 1) {
		score -= e.config.AdjacentPenalty
	}
	if commitments.Busy(hour + durationHours) {
		score -= e.config.AdjacentPenalty
	}
	if commitments.Total() > e.config.BusyDayThreshold {
		score -= e.config.BusyDayPenalty
	}

	if score < 0 {
		return 0
	}
	return score
}

// FocusScore rates expected concentration at hour for a task of priority.
func (e *RecommendationEngine) FocusScore(hour int, priority domain.Priority, pattern domain.FocusPattern) int {
	score := e.profile.DefaultScore(hour)

	if learned, ok := pattern.Learned(hour); ok {
		score = roundScore(float64(score)*e.config.DefaultFocusBlend + float64(learned)*e.config.LearnedFocusBlend)
	}

	switch {
	case e.profile.IsTopPreferred(priority, hour):
		score += e.config.TopPreferredBonus
	case e.profile.IsPreferred(priority, hour):
		score += e.config.PreferredBonus
	}

	if score > domain.MaxFocusScore {
		return domain.MaxFocusScore
	}
	return score
}

// OverallScore blends focus and availability into the ranking score.
func (e *RecommendationEngine) OverallScore(focus, availability int) int {
	return roundScore(float64(focus)*e.config.FocusWeight + float64(availability)*e.config.AvailabilityWeight)
}

// candidateRange returns the inclusive hour bounds for date. Hours that have
// started by now are skipped when date is today.
func (e *RecommendationEngine) candidateRange(date, now time.Time) (int, int) {
	start := e.config.WorkStartHour
	local := now.In(date.Location())
	if sameDay(date, local) && local.Hour()+1 > start {
		start = local.Hour() + 1
	}
	return start, e.config.WorkEndHour
}

func (e *RecommendationEngine) loadPattern(ctx context.Context) domain.FocusPattern {
	if e.patterns == nil {
		return domain.FocusPattern{}
	}
	pattern, err := e.patterns.Snapshot(ctx)
	if err != nil {
		e.logger.Warn("focus patterns unavailable, using defaults", "error", err)
		return domain.FocusPattern{}
	}
	return pattern
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// roundScore rounds half away from zero. The inner rounding drops float noise
// so that a blend landing on x.5 always rounds up.
func roundScore(v float64) int {
	return int(math.Round(math.Round(v*1e6) / 1e6))
}
