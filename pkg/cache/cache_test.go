package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/ha1tch/drugref/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(16, time.Minute)
	defer c.Close()

	_, err := c.Get(ctx, "graph:elements")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "graph:elements", []byte(`[]`)))
	val, err := c.Get(ctx, "graph:elements")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), val)
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(16, time.Minute)

	require.NoError(t, c.Set(ctx, "graph:elements", []byte("a")))
	require.NoError(t, c.Set(ctx, "graph:nodes:drug", []byte("b")))
	require.NoError(t, c.Set(ctx, "journals:top", []byte("c")))

	require.NoError(t, c.DeletePrefix(ctx, "graph:"))

	assert.Equal(t, 1, c.Len())
	_, err := c.Get(ctx, "journals:top")
	assert.NoError(t, err)
}

func TestMemoryCache_Evicts(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(2, time.Minute)

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, cache.ErrMiss)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(4, 20*time.Millisecond)

	require.NoError(t, c.Set(ctx, "journals:top", []byte("x")))
	time.Sleep(60 * time.Millisecond)

	_, err := c.Get(ctx, "journals:top")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestRedisCache(t *testing.T) {
	c, err := cache.NewRedisCache("localhost", 6379, time.Minute, "drugref-test:")
	if err != nil {
		t.Skip("Redis not available:", err)
	}
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.DeletePrefix(ctx, ""))

	_, err = c.Get(ctx, "graph:elements")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "graph:elements", []byte(`[1]`)))
	val, err := c.Get(ctx, "graph:elements")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), val)

	require.NoError(t, c.DeletePrefix(ctx, "graph:"))
	_, err = c.Get(ctx, "graph:elements")
	assert.ErrorIs(t, err, cache.ErrMiss)
}
