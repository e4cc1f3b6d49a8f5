package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
)

// CompletionResult describes the learned-score change for one completion.
type CompletionResult struct {
	Hour          int
	PreviousScore int
	Score         int
	Strategy      string
}

// FocusPatternStore owns the learned per-hour scores. Increments go through
// the repository's atomic Update, so stores in separate processes sharing a
// backend do not lose completions; the mutex guards the local cache.
type FocusPatternStore struct {
	repo     domain.FocusPatternRepository
	strategy domain.LearningStrategy
	logger   *slog.Logger

	mu     sync.Mutex
	cache  map[int]int
	loaded bool
}

// NewFocusPatternStore creates a store backed by repo. A nil strategy uses
// the monotonic increment.
func NewFocusPatternStore(repo domain.FocusPatternRepository, strategy domain.LearningStrategy, logger *slog.Logger) *FocusPatternStore {
	if strategy == nil {
		strategy = domain.DefaultLearningStrategy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FocusPatternStore{
		repo:     repo,
		strategy: strategy,
		logger:   logger,
	}
}

// Snapshot returns the learned scores, loading them on first use.
func (s *FocusPatternStore) Snapshot(ctx context.Context) (domain.FocusPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return domain.FocusPattern{}, err
	}
	return domain.NewFocusPattern(s.cache), nil
}

// RecordCompletion applies the learning strategy to hour and persists the result.
func (s *FocusPatternStore) RecordCompletion(ctx context.Context, hour int) (CompletionResult, error) {
	if !domain.ValidHour(hour) {
		return CompletionResult{}, fmt.Errorf("record completion at %d: %w", hour, domain.ErrInvalidHour)
	}

	change, err := s.repo.Update(ctx, hour, s.strategy.Next)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("update focus score: %w", err)
	}
	next := change.Score
	previous := change.Previous
	if !change.Found {
		previous = domain.BaselineLearnedScore
	}

	s.mu.Lock()
	if s.loaded {
		s.cache[hour] = next
	}
	s.mu.Unlock()

	s.logger.Debug("focus pattern updated",
		"hour", hour,
		"previous", previous,
		"score", next,
		"strategy", s.strategy.Name(),
	)

	return CompletionResult{
		Hour:          hour,
		PreviousScore: previous,
		Score:         next,
		Strategy:      s.strategy.Name(),
	}, nil
}

// Invalidate drops the cached snapshot so the next read hits the repository.
// Needed when another process shares the same backing store.
func (s *FocusPatternStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
	s.loaded = false
}

func (s *FocusPatternStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	scores, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("load focus patterns: %w", err)
	}
	s.cache = make(map[int]int, len(scores))
	for hour, score := range scores {
		s.cache[hour] = score
	}
	s.loaded = true
	return nil
}
