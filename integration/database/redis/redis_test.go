package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/core/session"
	"github.com/dmitrymomot/authscreens/integration/database/redis"
	"github.com/dmitrymomot/authscreens/pkg/ratelimiter"
)

// connect returns a client for REDIS_TEST_URL, or for an in-process server
// when the variable is not set.
func connect(t *testing.T) goredis.UniversalClient {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		client, _ := inProcess(t)
		return client
	}
	return dial(t, url)
}

// inProcess starts a miniredis server for the test.
func inProcess(t *testing.T) (goredis.UniversalClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return dial(t, "redis://"+mr.Addr()+"/0"), mr
}

func dial(t *testing.T, url string) goredis.UniversalClient {
	t.Helper()
	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		ConnectTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func prefix() string {
	return "test:" + uuid.NewString() + ":"
}

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 200 * time.Millisecond,
	})
	assert.ErrorIs(t, err, redis.ErrRedisNotReady)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := redis.Healthcheck(nil)(context.Background())
	assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
}

func TestSessionStore(t *testing.T) {
	t.Parallel()
	client := connect(t)
	ctx := context.Background()
	pfx := prefix()
	store := redis.NewSessionStore[struct{}](client, redis.WithKeyPrefix(pfx))
	mgr := session.NewManager(store, session.WithTTL(time.Minute))

	anon, err := mgr.New(ctx, session.NewSessionParams{IP: "192.0.2.1", UserAgent: "test"})
	require.NoError(t, err)
	require.NoError(t, mgr.Store(ctx, anon))

	got, err := mgr.GetByToken(ctx, anon.Token)
	require.NoError(t, err)
	assert.Equal(t, anon.ID, got.ID)
	assert.False(t, got.IsModified())

	authed, err := mgr.Authenticate(ctx, got, "backend-token", "a@b.com")
	require.NoError(t, err)

	_, err = mgr.GetByToken(ctx, anon.Token)
	assert.ErrorIs(t, err, session.ErrNotFound)
	n, err := client.Exists(ctx, pfx+"session:token:"+anon.Token).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "rotated token index is removed")

	loaded, err := mgr.GetByToken(ctx, authed.Token)
	require.NoError(t, err)
	assert.Equal(t, "backend-token", loaded.AuthToken)
	assert.Equal(t, "a@b.com", loaded.Email)

	require.NoError(t, store.Delete(ctx, loaded.ID))
	_, err = store.GetByID(ctx, loaded.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, loaded.ID), session.ErrNotFound)
}

func TestRateLimitStore(t *testing.T) {
	t.Parallel()
	client := connect(t)
	ctx := context.Background()

	now := time.Now()
	clock := func() time.Time { return now }
	store := redis.NewRateLimitStore(client, redis.WithKeyPrefix(prefix()), redis.WithNow(clock))
	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})
	require.NoError(t, err)

	for want := 1; want >= 0; want-- {
		res, err := limiter.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.Equal(t, want, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	now = now.Add(time.Minute)
	res, err = limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	require.NoError(t, limiter.Reset(ctx, "ip"))
	res, err = limiter.Status(ctx, "ip")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)
}

func TestSessionStore_KeysExpire(t *testing.T) {
	t.Parallel()
	client, mr := inProcess(t)
	ctx := context.Background()
	store := redis.NewSessionStore[struct{}](client, redis.WithKeyPrefix(prefix()))
	mgr := session.NewManager(store, session.WithTTL(time.Minute))

	sess, err := mgr.New(ctx, session.NewSessionParams{IP: "192.0.2.1", UserAgent: "test"})
	require.NoError(t, err)
	require.NoError(t, mgr.Store(ctx, sess))

	mr.FastForward(2 * time.Minute)

	_, err = store.GetByToken(ctx, sess.Token)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = store.GetByID(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRateLimitStore_RejectedRequestTakesNothing(t *testing.T) {
	t.Parallel()
	client := connect(t)
	ctx := context.Background()

	now := time.Now()
	store := redis.NewRateLimitStore(client, redis.WithKeyPrefix(prefix()), redis.WithNow(func() time.Time { return now }))
	cfg := ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}

	remaining, _, err := store.ConsumeTokens(ctx, "ip", 2, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	remaining, resetAt, err := store.ConsumeTokens(ctx, "ip", 2, cfg)
	require.NoError(t, err)
	assert.Equal(t, -1, remaining)
	assert.Equal(t, now.Add(time.Minute).UnixMilli(), resetAt.UnixMilli())

	remaining, _, err = store.ConsumeTokens(ctx, "ip", 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}
