package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
)

// PostgresFocusPatternRepository stores one row per (user, hour) in PostgreSQL.
type PostgresFocusPatternRepository struct {
	pool   *pgxpool.Pool
	userID uuid.UUID
}

// NewPostgresFocusPatternRepository creates a repository scoped to userID.
func NewPostgresFocusPatternRepository(pool *pgxpool.Pool, userID uuid.UUID) *PostgresFocusPatternRepository {
	return &PostgresFocusPatternRepository{pool: pool, userID: userID}
}

func (r *PostgresFocusPatternRepository) Get(ctx context.Context, hour int) (int, bool, error) {
	var score int16
	err := r.pool.QueryRow(ctx,
		`SELECT score FROM focus_patterns WHERE user_id = $1 AND hour = $2`,
		r.userID, int16(hour),
	).Scan(&score)
	if database.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return int(score), true, nil
}

func (r *PostgresFocusPatternRepository) Set(ctx context.Context, hour, score int) error {
	if !domain.ValidHour(hour) {
		return fmt.Errorf("set hour %d: %w", hour, domain.ErrInvalidHour)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO focus_patterns (user_id, hour, score, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, hour) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = NOW()
	`, r.userID, int16(hour), int16(domain.ClampScore(score)))
	return err
}

// Update swaps the score only if it still holds the value that was read.
func (r *PostgresFocusPatternRepository) Update(ctx context.Context, hour int, next domain.ScoreFunc) (domain.ScoreChange, error) {
	return retrySwap(ctx, hour, func(ctx context.Context) (domain.ScoreChange, bool, error) {
		current, found, err := r.Get(ctx, hour)
		if err != nil {
			return domain.ScoreChange{}, false, err
		}
		change := nextChange(current, found, next)

		var tag pgconn.CommandTag
		if found {
			tag, err = r.pool.Exec(ctx, `
				UPDATE focus_patterns SET score = $1, updated_at = NOW()
				WHERE user_id = $2 AND hour = $3 AND score = $4
			`, int16(change.Score), r.userID, int16(hour), int16(current))
		} else {
			tag, err = r.pool.Exec(ctx, `
				INSERT INTO focus_patterns (user_id, hour, score, updated_at)
				VALUES ($1, $2, $3, NOW())
				ON CONFLICT (user_id, hour) DO NOTHING
			`, r.userID, int16(hour), int16(change.Score))
		}
		if err != nil {
			return domain.ScoreChange{}, false, err
		}
		return change, tag.RowsAffected() == 1, nil
	})
}

func (r *PostgresFocusPatternRepository) All(ctx context.Context) (map[int]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT hour, score FROM focus_patterns WHERE user_id = $1`,
		r.userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[int]int)
	for rows.Next() {
		var hour, score int16
		if err := rows.Scan(&hour, &score); err != nil {
			return nil, err
		}
		scores[int(hour)] = int(score)
	}
	return scores, rows.Err()
}
