package domain

const (
	// BaselineLearnedScore is the starting point for an hour with no history.
	BaselineLearnedScore = 50
	// CompletionIncrement is added for each completion recorded at an hour.
	CompletionIncrement = 5
)

// LearningStrategy decides the next learned score after a completion.
// current is ignored when found is false.
type LearningStrategy interface {
	Name() string
	Next(current int, found bool) int
}

// MonotonicIncrement nudges the score up by a fixed step and saturates at 100.
// Scores never decrease.
type MonotonicIncrement struct {
	Baseline int
	Step     int
}

// DefaultLearningStrategy returns the +5 from a baseline of 50 rule.
func DefaultLearningStrategy() MonotonicIncrement {
	return MonotonicIncrement{Baseline: BaselineLearnedScore, Step: CompletionIncrement}
}

func (MonotonicIncrement) Name() string { return "monotonic_increment" }

func (s MonotonicIncrement) Next(current int, found bool) int {
	if !found {
		current = s.Baseline
	}
	next := current + s.Step
	if next < current {
		return current
	}
	return ClampScore(next)
}
