package cache_test

import (
	"context"
	"testing"
	"time"

	"content-summarizer/internal/infra/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T, ttl time.Duration) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := cache.NewRedis(cache.RedisConfig{Addr: mr.Addr(), KeyPrefix: "summary:", TTL: ttl})
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedis_GetSet(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, time.Hour)

	_, ok, err := r.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok, "missing key is a miss, not an error")

	require.NoError(t, r.Set(ctx, "abc", "a summary"))

	got, ok, err := r.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a summary", got)

	stored, err := mr.Get("summary:abc")
	require.NoError(t, err)
	assert.Equal(t, "a summary", stored)
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, time.Minute)

	require.NoError(t, r.Set(ctx, "k", "v"))
	assert.Equal(t, time.Minute, mr.TTL("summary:k"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_Ping(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, time.Minute)

	assert.NoError(t, r.Ping(ctx))

	mr.Close()
	assert.Error(t, r.Ping(ctx))
}

func TestRedis_ErrorsWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, time.Minute)
	mr.Close()

	_, _, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, r.Set(ctx, "k", "v"))
}
