package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/rockae-api/internal/application"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewSessionStore(rdb)
}

func session(sid, uid string) application.Session {
	return application.Session{
		ID:        sid,
		UserID:    uid,
		StorageID: 7,
		Email:     "alice@example.com",
		CreatedAt: time.Date(2024, 5, 1, 10, 30, 0, 123, time.UTC),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	want := session("s1", "USR7")
	require.NoError(t, store.Save(ctx, want, time.Hour))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.StorageID, got.StorageID)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestSessionStore_GetUnknown(t *testing.T) {
	_, store := newTestStore(t)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_TTL(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session("s1", "USR7"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(sessionKey("s1")))
	assert.Equal(t, time.Minute, mr.TTL(userSessionsKey("USR7")))

	mr.FastForward(time.Minute + time.Second)
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Delete(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session("s1", "USR7"), time.Hour))
	require.NoError(t, store.Save(ctx, session("s2", "USR7"), time.Hour))
	require.NoError(t, store.Delete(ctx, session("s1", "USR7")))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	members, err := mr.Members(userSessionsKey("USR7"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, members)
}

func TestSessionStore_DeleteAllForUser(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session("s1", "USR7"), time.Hour))
	require.NoError(t, store.Save(ctx, session("s2", "USR7"), time.Hour))
	require.NoError(t, store.Save(ctx, session("s3", "USR8"), time.Hour))

	require.NoError(t, store.DeleteAllForUser(ctx, "USR7"))

	for _, sid := range []string{"s1", "s2"} {
		got, err := store.Get(ctx, sid)
		require.NoError(t, err)
		assert.Nil(t, got, sid)
	}
	assert.False(t, mr.Exists(userSessionsKey("USR7")))

	other, err := store.Get(ctx, "s3")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, "USR8", other.UserID)

	require.NoError(t, store.DeleteAllForUser(ctx, "USR-none"))
}
