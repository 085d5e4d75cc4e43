package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/users-api/internal/storage"
	"github.com/hongminglow/users-api/internal/storage/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.UserStore {
		store, err := NewUserStore(context.Background(), ":memory:")
		require.NoError(t, err)
		return store
	})
}

func TestEveryConnectionHasBusyTimeout(t *testing.T) {
	ctx := context.Background()
	store, err := NewUserStore(ctx, t.TempDir()+"/users.db")
	require.NoError(t, err)
	defer store.Close()

	conns := make([]*sql.Conn, 3)
	for i := range conns {
		conns[i], err = store.db.Conn(ctx)
		require.NoError(t, err)
		defer conns[i].Close()
	}
	for _, conn := range conns {
		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&timeout))
		assert.Equal(t, 5000, timeout)
	}
}

func TestNewUserStoreIsIdempotent(t *testing.T) {
	path := t.TempDir() + "/users.db"
	ctx := context.Background()

	first, err := NewUserStore(ctx, path)
	require.NoError(t, err)
	first.Close()

	second, err := NewUserStore(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.Ping(ctx))
}
