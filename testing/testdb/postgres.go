package testdb

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"contact-service/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	sharedMu        sync.Mutex
	sharedContainer *PostgresContainer
	sharedRefs      int
)

// PostgresContainer wraps the postgres testcontainer
type PostgresContainer struct {
	Container *postgres.PostgresContainer
	DB        *bun.DB
	DSN       string
}

// SetupSharedPostgres returns the PostgreSQL container shared by the tests of
// a package, starting it on first use. Every call must be paired with
// Cleanup; the container is terminated when the last user cleans up.
//
// Tests using the shared container CANNOT run in parallel.
//
// Usage:
//
//	func TestMyRepo(t *testing.T) {
//	    pg := testdb.SetupSharedPostgres(t)
//	    defer pg.Cleanup(t)
//
//	    pg.RunMigrations(t, contact.Models()...)
//
//	    t.Run("Case", func(t *testing.T) {
//	        testdb.CleanupTables(t, pg.DB, "messages", "users")
//	    })
//	}
func SetupSharedPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedContainer == nil {
		ctx := context.Background()
		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			),
		)
		require.NoError(t, err)

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
		bunDB := bun.NewDB(sqldb, pgdialect.New())
		require.NoError(t, bunDB.PingContext(ctx))

		sharedContainer = &PostgresContainer{
			Container: pgContainer,
			DB:        bunDB,
			DSN:       connStr,
		}
	}

	sharedRefs++
	return sharedContainer
}

func (pc *PostgresContainer) Cleanup(t *testing.T) {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	sharedRefs--
	if sharedRefs > 0 {
		return
	}

	if pc.DB != nil {
		_ = pc.DB.Close()
	}
	if pc.Container != nil {
		if err := pc.Container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	sharedContainer = nil
}

// RunMigrations creates the tables of models, in order
func (pc *PostgresContainer) RunMigrations(t *testing.T, models ...any) {
	t.Helper()
	require.NoError(t, db.RunMigrations(context.Background(), pc.DB, models...))
}

func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		_, err := db.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
		require.NoError(t, err, "failed to truncate table: %s", table)
	}
}

// Count returns the number of rows in table
func Count(t *testing.T, db *bun.DB, table string) int {
	t.Helper()

	n, err := db.NewSelect().Table(table).Count(context.Background())
	require.NoError(t, err, "failed to count table: %s", table)
	return n
}
