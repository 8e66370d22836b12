// Package testutil starts throwaway PostgreSQL databases for integration
// tests.
package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iho/ledgersync/internal/infrastructure/postgres"
)

// TestDB is a migrated database running in its own container.
type TestDB struct {
	Pool *pgxpool.Pool
	DSN  string
	t    *testing.T
}

// NewTestDB starts a PostgreSQL container, applies the migrations and
// registers cleanup on t.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledgersync_test"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	migrator := postgres.NewMigrator(dsn, migrationsPath(), zerolog.Nop())
	require.NoError(t, migrator.Up(), "failed to run migrations")

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DatabaseURL:    dsn,
		MaxConns:       10,
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(pool.Close)

	return &TestDB{Pool: pool, DSN: dsn, t: t}
}

// Truncate empties every table between subtests.
func (db *TestDB) Truncate(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE
		transactions, forecast_events, budget_lines, budgets, payment_flows,
		portfolios, categories, accounts, sync_mappings, sync_tasks
		RESTART IDENTITY CASCADE`)
	require.NoError(db.t, err, "failed to truncate tables")
}

// migrationsPath locates the migrations directory relative to this file.
func migrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
