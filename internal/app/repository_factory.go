package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/infrastructure/persistence"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// StoreBackend is an opened focus-pattern store plus the handles behind it.
type StoreBackend struct {
	Driver database.Driver
	Repo   domain.FocusPatternRepository
	SQLite *sql.DB
	Pool   *pgxpool.Pool
	Redis  *redis.Client
}

// Ping checks the underlying connection. The memory store is always up.
func (b *StoreBackend) Ping(ctx context.Context) error {
	switch {
	case b.SQLite != nil:
		return b.SQLite.PingContext(ctx)
	case b.Pool != nil:
		return b.Pool.Ping(ctx)
	case b.Redis != nil:
		return b.Redis.Ping(ctx).Err()
	default:
		return nil
	}
}

// Close releases the connection.
func (b *StoreBackend) Close() error {
	switch {
	case b.SQLite != nil:
		return b.SQLite.Close()
	case b.Pool != nil:
		b.Pool.Close()
		return nil
	case b.Redis != nil:
		return b.Redis.Close()
	default:
		return nil
	}
}

// RepositoryFactory opens the focus-pattern store for the configured driver.
type RepositoryFactory struct {
	cfg    *config.Config
	userID uuid.UUID
	logger *slog.Logger
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(cfg *config.Config, logger *slog.Logger) *RepositoryFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepositoryFactory{cfg: cfg, userID: cfg.UserUUID(), logger: logger}
}

// Driver resolves the configured store name.
func (f *RepositoryFactory) Driver() database.Driver {
	url := f.cfg.DatabaseURL
	if url == "" {
		url = f.cfg.RedisURL
	}
	return database.ParseDriver(f.cfg.Store, url)
}

// Open connects to the store, running migrations for SQL backends.
func (f *RepositoryFactory) Open(ctx context.Context) (*StoreBackend, error) {
	driver := f.Driver()
	switch driver {
	case database.DriverMemory:
		f.logger.Warn("using in-memory focus patterns; learning is lost on exit")
		return &StoreBackend{Driver: driver, Repo: persistence.NewInMemoryFocusPatternRepository()}, nil

	case database.DriverSQLite:
		path := f.cfg.SQLitePath
		if path == "" {
			path = database.DefaultSQLitePath()
		}
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		f.logger.Info("connected to SQLite", "path", path)
		return &StoreBackend{
			Driver: driver,
			Repo:   persistence.NewSQLiteFocusPatternRepository(db, f.userID),
			SQLite: db,
		}, nil

	case database.DriverPostgres:
		pool, err := postgres.Open(ctx, f.cfg.DatabaseURL, f.cfg.DBMaxConns)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		f.logger.Info("connected to database")
		return &StoreBackend{
			Driver: driver,
			Repo:   persistence.NewPostgresFocusPatternRepository(pool, f.userID),
			Pool:   pool,
		}, nil

	case database.DriverRedis:
		opt, err := redis.ParseURL(f.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		f.logger.Info("connected to Redis")
		return &StoreBackend{
			Driver: driver,
			Repo:   persistence.NewRedisFocusPatternRepository(client, f.userID),
			Redis:  client,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}
