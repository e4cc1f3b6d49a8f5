package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunPostgresMigrations applies every PostgreSQL migration. Each file is idempotent.
func RunPostgresMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	statements, err := upMigrations("postgres")
	if err != nil {
		return err
	}
	for i, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute postgres migration %d: %w", i+1, err)
		}
	}
	return nil
}
