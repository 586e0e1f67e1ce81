//go:build integration

package baseline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mkessler/deal-ranker/internal/baseline"
)

func setupPostgres(t *testing.T) *baseline.PostgresSource {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dealranker_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	src, err := baseline.NewPostgresSource(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		src.Close()
	})

	require.NoError(t, src.Migrate(ctx))

	return src
}

func TestPostgresSource_Ping(t *testing.T) {
	src := setupPostgres(t)
	require.NoError(t, src.Ping(context.Background()))
}

func TestPostgresSource_EmptyTable(t *testing.T) {
	src := setupPostgres(t)

	averages, err := src.Averages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, averages)
}

func TestPostgresSource_UpsertAndRead(t *testing.T) {
	src := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, src.Upsert(ctx, "electronics", 150))
	require.NoError(t, src.Upsert(ctx, "computers", 425.50))

	averages, err := src.Averages(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"electronics": 150,
		"computers":   425.50,
	}, averages)

	t.Run("upsert overwrites", func(t *testing.T) {
		require.NoError(t, src.Upsert(ctx, "electronics", 175))

		averages, err := src.Averages(ctx)
		require.NoError(t, err)
		assert.Equal(t, 175.0, averages["electronics"])
		assert.Len(t, averages, 2)
	})
}
