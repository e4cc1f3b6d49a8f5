package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
)

const redisKeyPrefix = "slotwise:focus:"

// RedisFocusPatternRepository keeps a user's scores in one hash, field = hour.
type RedisFocusPatternRepository struct {
	client redis.UniversalClient
	key    string
}

// NewRedisFocusPatternRepository creates a repository scoped to userID.
func NewRedisFocusPatternRepository(client redis.UniversalClient, userID uuid.UUID) *RedisFocusPatternRepository {
	return &RedisFocusPatternRepository{
		client: client,
		key:    redisKeyPrefix + userID.String(),
	}
}

// Key returns the hash key holding this user's scores.
func (r *RedisFocusPatternRepository) Key() string {
	return r.key
}

func (r *RedisFocusPatternRepository) Get(ctx context.Context, hour int) (int, bool, error) {
	score, err := r.client.HGet(ctx, r.key, strconv.Itoa(hour)).Int()
	if database.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (r *RedisFocusPatternRepository) Set(ctx context.Context, hour, score int) error {
	if !domain.ValidHour(hour) {
		return fmt.Errorf("set hour %d: %w", hour, domain.ErrInvalidHour)
	}
	return r.client.HSet(ctx, r.key, strconv.Itoa(hour), domain.ClampScore(score)).Err()
}

// Update watches the hash so the write is discarded if another client
// changed it after the read.
func (r *RedisFocusPatternRepository) Update(ctx context.Context, hour int, next domain.ScoreFunc) (domain.ScoreChange, error) {
	field := strconv.Itoa(hour)
	return retrySwap(ctx, hour, func(ctx context.Context) (domain.ScoreChange, bool, error) {
		var change domain.ScoreChange
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.HGet(ctx, r.key, field).Int()
			found := true
			if database.IsNoRows(err) {
				current, found = 0, false
			} else if err != nil {
				return err
			}
			change = nextChange(current, found, next)

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, r.key, field, change.Score)
				return nil
			})
			return err
		}, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			return domain.ScoreChange{}, false, nil
		}
		if err != nil {
			return domain.ScoreChange{}, false, err
		}
		return change, true, nil
	})
}

// All skips fields that are not valid hour/score pairs.
func (r *RedisFocusPatternRepository) All(ctx context.Context) (map[int]int, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	scores := make(map[int]int, len(fields))
	for field, value := range fields {
		hour, err := strconv.Atoi(field)
		if err != nil || !domain.ValidHour(hour) {
			continue
		}
		score, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		scores[hour] = score
	}
	return scores, nil
}
