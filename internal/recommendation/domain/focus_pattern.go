package domain

import "errors"

const (
	MinFocusScore = 0
	MaxFocusScore = 100
)

var (
	ErrInvalidHour = errors.New("hour must be between 0 and 23")
)

// FocusPattern is a read-only snapshot of learned per-hour scores.
// Hours that were never recorded are absent.
type FocusPattern struct {
	scores map[int]int
}

// NewFocusPattern builds a snapshot, dropping invalid hours and clamping scores.
func NewFocusPattern(scores map[int]int) FocusPattern {
	copied := make(map[int]int, len(scores))
	for hour, score := range scores {
		if !ValidHour(hour) {
			continue
		}
		copied[hour] = ClampScore(score)
	}
	return FocusPattern{scores: copied}
}

// Learned returns the learned score for hour, if any.
func (p FocusPattern) Learned(hour int) (int, bool) {
	score, ok := p.scores[hour]
	return score, ok
}

// Len returns the number of hours with a learned score.
func (p FocusPattern) Len() int {
	return len(p.scores)
}

// Scores returns a copy of the learned scores.
func (p FocusPattern) Scores() map[int]int {
	out := make(map[int]int, len(p.scores))
	for hour, score := range p.scores {
		out[hour] = score
	}
	return out
}

// ClampScore limits a score to [0,100].
func ClampScore(score int) int {
	if score < MinFocusScore {
		return MinFocusScore
	}
	if score > MaxFocusScore {
		return MaxFocusScore
	}
	return score
}
