package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
)

// InMemoryFocusPatternRepository keeps scores for the life of the process.
type InMemoryFocusPatternRepository struct {
	mu     sync.RWMutex
	scores map[int]int
}

// NewInMemoryFocusPatternRepository creates an empty repository.
func NewInMemoryFocusPatternRepository() *InMemoryFocusPatternRepository {
	return &InMemoryFocusPatternRepository{scores: make(map[int]int)}
}

func (r *InMemoryFocusPatternRepository) Get(_ context.Context, hour int) (int, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	score, ok := r.scores[hour]
	return score, ok, nil
}

func (r *InMemoryFocusPatternRepository) Set(_ context.Context, hour, score int) error {
	if !domain.ValidHour(hour) {
		return fmt.Errorf("set hour %d: %w", hour, domain.ErrInvalidHour)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[hour] = domain.ClampScore(score)
	return nil
}

func (r *InMemoryFocusPatternRepository) Update(_ context.Context, hour int, next domain.ScoreFunc) (domain.ScoreChange, error) {
	if !domain.ValidHour(hour) {
		return domain.ScoreChange{}, fmt.Errorf("update hour %d: %w", hour, domain.ErrInvalidHour)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, found := r.scores[hour]
	change := nextChange(current, found, next)
	r.scores[hour] = change.Score
	return change, nil
}

func (r *InMemoryFocusPatternRepository) All(_ context.Context) (map[int]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int]int, len(r.scores))
	for hour, score := range r.scores {
		out[hour] = score
	}
	return out, nil
}
