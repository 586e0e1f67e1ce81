package baseline

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPoolSize = 4

// PostgresSource loads market averages from a market_baselines table,
// typically maintained by a separate aggregation job.
//
// TODO(test): PostgresSource requires live Postgres, tested via integration tests.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a PostgresSource with connection pooling.
func NewPostgresSource(ctx context.Context, connString string) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresSource{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the market_baselines table if missing.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS market_baselines (
			category   TEXT PRIMARY KEY,
			avg_price  NUMERIC(12,2) NOT NULL CHECK (avg_price > 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating market_baselines table: %w", err)
	}
	return nil
}

// Averages reads the full market-average table.
func (s *PostgresSource) Averages(ctx context.Context) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT category, avg_price FROM market_baselines",
	)
	if err != nil {
		return nil, fmt.Errorf("querying market baselines: %w", err)
	}
	defer rows.Close()

	averages := make(map[string]float64)
	for rows.Next() {
		var category string
		var avg float64
		if err := rows.Scan(&category, &avg); err != nil {
			return nil, fmt.Errorf("scanning baseline row: %w", err)
		}
		averages[category] = avg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating baseline rows: %w", err)
	}

	return averages, nil
}

// Upsert writes one category average, used by aggregation jobs and tests.
func (s *PostgresSource) Upsert(ctx context.Context, category string, avg float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO market_baselines (category, avg_price, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (category) DO UPDATE
		SET avg_price = EXCLUDED.avg_price, updated_at = now()
	`, category, avg)
	if err != nil {
		return fmt.Errorf("upserting baseline for %s: %w", category, err)
	}
	return nil
}
