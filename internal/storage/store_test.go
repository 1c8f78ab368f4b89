package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAllowedUsers(t *testing.T) {
	store := newTestStore(t)

	allowed, err := store.IsUserAllowed(42)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, store.AddAllowedUser(42, 1))
	require.NoError(t, store.AddAllowedUser(43, 1))

	allowed, err = store.IsUserAllowed(42)
	require.NoError(t, err)
	assert.True(t, allowed)

	users, err := store.GetAllowedUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(42), users[0].TelegramID)
	assert.Equal(t, int64(1), users[0].AddedBy)

	require.NoError(t, store.RemoveAllowedUser(42))
	allowed, err = store.IsUserAllowed(42)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAddAllowedUser_Idempotent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddAllowedUser(42, 1))
	require.NoError(t, store.AddAllowedUser(42, 2))

	users, err := store.GetAllowedUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(2), users[0].AddedBy)
}

func TestRemoveAllowedUser_Missing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.RemoveAllowedUser(999))
}
