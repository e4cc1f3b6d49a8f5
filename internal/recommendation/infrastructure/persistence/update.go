package persistence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
)

// swapFunc tries one compare-and-swap. swapped is false when another writer
// changed the score between the read and the write.
type swapFunc func(ctx context.Context) (change domain.ScoreChange, swapped bool, err error)

// retrySwap runs attempt until it swaps or the attempts run out.
func retrySwap(ctx context.Context, hour int, attempt swapFunc) (domain.ScoreChange, error) {
	if !domain.ValidHour(hour) {
		return domain.ScoreChange{}, fmt.Errorf("update hour %d: %w", hour, domain.ErrInvalidHour)
	}
	for i := 0; i < domain.MaxUpdateAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ScoreChange{}, err
		}
		change, swapped, err := attempt(ctx)
		if err != nil {
			return domain.ScoreChange{}, err
		}
		if swapped {
			return change, nil
		}
	}
	return domain.ScoreChange{}, fmt.Errorf("update hour %d after %d attempts: %w",
		hour, domain.MaxUpdateAttempts, domain.ErrUpdateContention)
}

func nextChange(current int, found bool, next domain.ScoreFunc) domain.ScoreChange {
	return domain.ScoreChange{
		Previous: current,
		Found:    found,
		Score:    domain.ClampScore(next(current, found)),
	}
}
