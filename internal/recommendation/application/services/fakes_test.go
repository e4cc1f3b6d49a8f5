package services

import (
	"context"
	"errors"
	"sync"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
)

type fakeRepo struct {
	mu       sync.Mutex
	scores   map[int]int
	allCalls int
	getErr   error
	setErr   error
	allErr   error
}

func newFakeRepo(initial map[int]int) *fakeRepo {
	scores := make(map[int]int)
	for h, s := range initial {
		scores[h] = s
	}
	return &fakeRepo{scores: scores}
}

func (r *fakeRepo) Get(_ context.Context, hour int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return 0, false, r.getErr
	}
	s, ok := r.scores[hour]
	return s, ok, nil
}

func (r *fakeRepo) Set(_ context.Context, hour int, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setErr != nil {
		return r.setErr
	}
	r.scores[hour] = score
	return nil
}

func (r *fakeRepo) Update(_ context.Context, hour int, next domain.ScoreFunc) (domain.ScoreChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return domain.ScoreChange{}, r.getErr
	}
	if r.setErr != nil {
		return domain.ScoreChange{}, r.setErr
	}
	current, found := r.scores[hour]
	change := domain.ScoreChange{Previous: current, Found: found, Score: next(current, found)}
	r.scores[hour] = change.Score
	return change, nil
}

func (r *fakeRepo) All(_ context.Context) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allCalls++
	if r.allErr != nil {
		return nil, r.allErr
	}
	out := make(map[int]int, len(r.scores))
	for h, s := range r.scores {
		out[h] = s
	}
	return out, nil
}

type stubPatterns struct {
	pattern domain.FocusPattern
	err     error
}

func (s stubPatterns) Snapshot(context.Context) (domain.FocusPattern, error) {
	return s.pattern, s.err
}

var errBackend = errors.New("backend unavailable")
