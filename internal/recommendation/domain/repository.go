package domain

import (
	"context"
	"errors"
)

// ErrUpdateContention means a score kept changing underneath an update.
var ErrUpdateContention = errors.New("focus score changed concurrently")

// MaxUpdateAttempts bounds the compare-and-swap retries of Update.
const MaxUpdateAttempts = 16

// ScoreFunc computes the next score from the stored one. found is false
// when the hour has no score yet. It may run more than once per Update.
type ScoreFunc func(current int, found bool) int

// ScoreChange is the outcome of an Update.
type ScoreChange struct {
	Previous int
	Found    bool
	Score    int
}

// FocusPatternRepository persists learned scores for a single user.
type FocusPatternRepository interface {
	// Get returns the stored score for hour and whether one exists.
	Get(ctx context.Context, hour int) (int, bool, error)
	// Set stores score for hour, replacing any previous value.
	Set(ctx context.Context, hour int, score int) error
	// Update replaces the score for hour with next(current). Concurrent
	// updates through any repository over the same backend never lose a write.
	Update(ctx context.Context, hour int, next ScoreFunc) (ScoreChange, error)
	// All returns every stored hour.
	All(ctx context.Context) (map[int]int, error)
}
