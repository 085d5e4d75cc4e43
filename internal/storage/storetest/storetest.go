// Package storetest holds a behavioural test suite shared by every
// storage.UserStore implementation.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/users-api/internal/models"
	"github.com/hongminglow/users-api/internal/storage"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) storage.UserStore

// Run exercises the UserStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGet", func(t *testing.T) {
		store := open(t, newStore)
		ctx := context.Background()

		created, err := store.CreateUser(ctx, sampleUser("andi17x"))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := store.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "andi17x", got.Username)
		assert.Equal(t, "andi17x@example.com", got.Email)
		assert.Equal(t, models.EditorProfile, got.Profile)
		assert.Equal(t, "hash", got.PasswordHash)
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := open(t, newStore)
		_, err := store.GetUserByID(context.Background(), 999999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("FindByUsername", func(t *testing.T) {
		store := open(t, newStore)
		ctx := context.Background()
		created, err := store.CreateUser(ctx, sampleUser("budi"))
		require.NoError(t, err)

		got, err := store.FindByUsername(ctx, "budi")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		_, err = store.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		store := open(t, newStore)
		ctx := context.Background()
		_, err := store.CreateUser(ctx, sampleUser("dup"))
		require.NoError(t, err)

		again := sampleUser("dup")
		again.Email = "other@example.com"
		_, err = store.CreateUser(ctx, again)
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		store := open(t, newStore)
		ctx := context.Background()
		_, err := store.CreateUser(ctx, sampleUser("first"))
		require.NoError(t, err)

		again := sampleUser("second")
		again.Email = "first@example.com"
		_, err = store.CreateUser(ctx, again)
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("ListUsers", func(t *testing.T) {
		store := open(t, newStore)
		ctx := context.Background()

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)

		for i := 0; i < 3; i++ {
			_, err := store.CreateUser(ctx, sampleUser(fmt.Sprintf("user%d", i)))
			require.NoError(t, err)
		}
		users, err = store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Less(t, users[0].ID, users[1].ID)
		assert.Less(t, users[1].ID, users[2].ID)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		store := open(t, newStore)
		ctx := context.Background()
		created, err := store.CreateUser(ctx, sampleUser("carla"))
		require.NoError(t, err)

		name := "Carla Updated"
		updated, err := store.UpdateUser(ctx, created.ID, models.UserPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, name, updated.Name)
		assert.Equal(t, created.Username, updated.Username)
		assert.Equal(t, created.Email, updated.Email)
		assert.Equal(t, created.Profile, updated.Profile)
		assert.Equal(t, created.PasswordHash, updated.PasswordHash)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt.Add(-time.Second)))
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		store := open(t, newStore)
		name := "ghost"
		_, err := store.UpdateUser(context.Background(), 424242, models.UserPatch{Name: &name})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateConflict", func(t *testing.T) {
		store := open(t, newStore)
		ctx := context.Background()
		_, err := store.CreateUser(ctx, sampleUser("taken"))
		require.NoError(t, err)
		other, err := store.CreateUser(ctx, sampleUser("other"))
		require.NoError(t, err)

		username := "taken"
		_, err = store.UpdateUser(ctx, other.ID, models.UserPatch{Username: &username})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("Delete", func(t *testing.T) {
		store := open(t, newStore)
		ctx := context.Background()
		created, err := store.CreateUser(ctx, sampleUser("dora"))
		require.NoError(t, err)

		require.NoError(t, store.DeleteUser(ctx, created.ID))
		_, err = store.GetUserByID(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteUser(ctx, created.ID), storage.ErrNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		store := open(t, newStore)
		assert.NoError(t, store.Ping(context.Background()))
	})
}

func open(t *testing.T, newStore Factory) storage.UserStore {
	t.Helper()
	store := newStore(t)
	t.Cleanup(store.Close)
	return store
}

func sampleUser(username string) models.User {
	return models.User{
		Username:     username,
		Name:         username,
		Email:        username + "@example.com",
		Profile:      models.EditorProfile,
		PasswordHash: "hash",
	}
}
