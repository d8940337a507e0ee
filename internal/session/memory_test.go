package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skufinder/skufinder/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:    "01HX",
		Email: "alice@example.com",
		Role:  model.RoleUser,
	}
}

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	sess := New(testUser(), time.Hour)
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, model.RoleUser, got.Role)

	require.NoError(t, store.Delete(ctx, sess.Token))

	_, err = store.Get(ctx, sess.Token)
	assert.True(t, errors.Is(err, ErrNotFound), "deleted session must not authorize")
}

func TestMemoryStore_ExpiredSessionIsGone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	sess := New(testUser(), -time.Minute)
	require.NoError(t, store.Create(ctx, sess))

	_, err := store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UnknownToken(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_IncrWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrWindow(ctx, "10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Separate keys count independently.
	got, err := store.IncrWindow(ctx, "10.0.0.2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestMemoryStore_IncrWindowResets(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	_, err := store.IncrWindow(ctx, "10.0.0.1", time.Nanosecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	got, err := store.IncrWindow(ctx, "10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "window should have reset")
}

func TestNewToken_Unique(t *testing.T) {
	assert.NotEqual(t, NewToken(), NewToken())
}

func TestNew_SetsExpiry(t *testing.T) {
	sess := New(testUser(), time.Hour)
	assert.False(t, sess.Expired(time.Now()))
	assert.True(t, sess.Expired(time.Now().Add(2*time.Hour)))
	assert.NotEmpty(t, sess.Token)
}
