package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	require.Error(t, err)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session, err := store.Create(ctx, 7, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.True(t, mr.Exists("session:"+session.ID))
	assert.Equal(t, time.Hour, mr.TTL("session:"+session.ID))

	raw, err := mr.Get("session:" + session.ID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"userId":7`)
	assert.Contains(t, raw, `"expiresAt"`)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.True(t, got.ExpiresAt.Equal(session.ExpiresAt))

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, session.ID))
}

func TestSessionStore_Expiry(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	session, err := store.Create(ctx, 1, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_UnknownAndInvalid(t *testing.T) {
	_, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = store.Create(ctx, 1, 0)
	assert.Error(t, err)
}

func TestIdempotencyStore(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, ok, err := store.Lookup(ctx, 1, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Remember(ctx, 1, "abc", 10))
	require.NoError(t, store.Remember(ctx, 1, "abc", 11))

	id, ok, err := store.Lookup(ctx, 1, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(10), id, "first writer wins")

	_, ok, err = store.Lookup(ctx, 2, "abc")
	require.NoError(t, err)
	assert.False(t, ok, "keys are scoped per owner")

	mr.FastForward(idempotencyTTL + time.Second)
	_, ok, err = store.Lookup(ctx, 1, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}
