package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []string{"a", "b"}, time.Minute))

	var got []string
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRedisCacheMissLeavesDestUntouched(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	got := []string{"sentinel"}
	found, err := c.Get(ctx, "absent", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"sentinel"}, got)
}

func TestRedisCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", "v", time.Minute))
	require.NoError(t, c.Set(ctx, "k2", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k1", "k2"))
	require.NoError(t, c.Delete(ctx))

	var got string
	found, err := c.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCachePing(t *testing.T) {
	c := newTestCache(t)
	assert.NoError(t, c.Ping(context.Background()))
}
