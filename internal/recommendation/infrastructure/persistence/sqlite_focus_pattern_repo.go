package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
)

// SQLiteFocusPatternRepository stores one row per (user, hour) in SQLite.
type SQLiteFocusPatternRepository struct {
	db     *sql.DB
	userID uuid.UUID
	now    func() time.Time
}

// NewSQLiteFocusPatternRepository creates a repository scoped to userID.
func NewSQLiteFocusPatternRepository(db *sql.DB, userID uuid.UUID) *SQLiteFocusPatternRepository {
	return &SQLiteFocusPatternRepository{db: db, userID: userID, now: time.Now}
}

func (r *SQLiteFocusPatternRepository) Get(ctx context.Context, hour int) (int, bool, error) {
	var score int
	err := r.db.QueryRowContext(ctx,
		`SELECT score FROM focus_patterns WHERE user_id = ? AND hour = ?`,
		r.userID.String(), hour,
	).Scan(&score)
	if database.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (r *SQLiteFocusPatternRepository) Set(ctx context.Context, hour, score int) error {
	if !domain.ValidHour(hour) {
		return fmt.Errorf("set hour %d: %w", hour, domain.ErrInvalidHour)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO focus_patterns (user_id, hour, score, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, hour) DO UPDATE SET
			score = excluded.score,
			updated_at = excluded.updated_at
	`, r.userID.String(), hour, domain.ClampScore(score), r.now().UTC().Format(time.RFC3339))
	return err
}

// Update swaps the score only if it still holds the value that was read,
// so writers in other processes sharing the file cannot be overwritten.
func (r *SQLiteFocusPatternRepository) Update(ctx context.Context, hour int, next domain.ScoreFunc) (domain.ScoreChange, error) {
	return retrySwap(ctx, hour, func(ctx context.Context) (domain.ScoreChange, bool, error) {
		current, found, err := r.Get(ctx, hour)
		if err != nil {
			return domain.ScoreChange{}, false, err
		}
		change := nextChange(current, found, next)
		updatedAt := r.now().UTC().Format(time.RFC3339)

		var res sql.Result
		if found {
			res, err = r.db.ExecContext(ctx, `
				UPDATE focus_patterns SET score = ?, updated_at = ?
				WHERE user_id = ? AND hour = ? AND score = ?
			`, change.Score, updatedAt, r.userID.String(), hour, current)
		} else {
			res, err = r.db.ExecContext(ctx, `
				INSERT INTO focus_patterns (user_id, hour, score, updated_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT (user_id, hour) DO NOTHING
			`, r.userID.String(), hour, change.Score, updatedAt)
		}
		if err != nil {
			return domain.ScoreChange{}, false, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return domain.ScoreChange{}, false, err
		}
		return change, n == 1, nil
	})
}

func (r *SQLiteFocusPatternRepository) All(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT hour, score FROM focus_patterns WHERE user_id = ?`,
		r.userID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[int]int)
	for rows.Next() {
		var hour, score int
		if err := rows.Scan(&hour, &score); err != nil {
			return nil, err
		}
		scores[hour] = score
	}
	return scores, rows.Err()
}
