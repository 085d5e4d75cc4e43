package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/users-api/internal/storage"
	"github.com/hongminglow/users-api/internal/storage/storetest"
)

// TestStoreIntegration runs the store suite against a live Postgres database.
// Each subtest truncates the users table, so never point it at real data.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "true" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=true to run this integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	storetest.Run(t, func(t *testing.T) storage.UserStore {
		ctx := context.Background()
		store, err := NewUserStore(ctx, dbURL)
		require.NoError(t, err)
		_, err = store.pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY`)
		require.NoError(t, err)
		return store
	})
}

func TestMigrationsLeaveOneEmailIndex(t *testing.T) {
	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "true" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=true to run this integration test")
	}
	ctx := context.Background()
	store, err := NewUserStore(ctx, os.Getenv("DATABASE_URL"))
	require.NoError(t, err)
	defer store.Close()
	// A second run must not add indexes either.
	require.NoError(t, store.migrate(ctx))

	var count int
	err = store.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pg_indexes WHERE tablename = 'users' AND indexdef LIKE '%(email)%'`,
	).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
