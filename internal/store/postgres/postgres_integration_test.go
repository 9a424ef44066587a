package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tendjournal/tend/internal/store"
	"github.com/tendjournal/tend/internal/store/storetest"
)

// TestPostgresStoreCompliance runs the shared suite against a real database.
// Set JOURNAL_TEST_POSTGRES_DSN to point at a scratch database, or set
// JOURNAL_TEST_USE_TESTCONTAINERS=1 to spin one up via Docker.
func TestPostgresStoreCompliance(t *testing.T) {
	dsn := os.Getenv("JOURNAL_TEST_POSTGRES_DSN")
	if dsn == "" && os.Getenv("JOURNAL_TEST_USE_TESTCONTAINERS") == "1" {
		dsn = startContainer(t)
	}
	if dsn == "" {
		t.Skip("JOURNAL_TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		db, err := Open(dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, EnsureSchema(db))
		for _, tbl := range []string{"memory_summaries", "journal_entries", "growth_areas", "users"} {
			_, err := db.Exec("DELETE FROM " + tbl)
			require.NoError(t, err)
		}
		return NewWithDB(db)
	})
}

func startContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("journal_test"),
		tcpostgres.WithUsername("journal"),
		tcpostgres.WithPassword("journal"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}
