package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedStats struct {
	Orders  int64  `json:"orders"`
	Revenue string `json:"revenue"`
}

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, DASHBOARD_STATS_KEY, cachedStats{Orders: 3, Revenue: "450.00"}, CACHE_TTL_SHORT)

	var got cachedStats
	require.True(t, c.Get(ctx, DASHBOARD_STATS_KEY, &got))
	assert.Equal(t, int64(3), got.Orders)
	assert.Equal(t, "450.00", got.Revenue)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, PRODUCTS_CACHE_KEY, []string{"a"}, time.Minute)
	mr.FastForward(2 * time.Minute)

	var got []string
	assert.False(t, c.Get(ctx, PRODUCTS_CACHE_KEY, &got))
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, PRODUCTS_CACHE_KEY, []string{"a"}, time.Minute)
	c.Set(ctx, CATEGORIES_CACHE_KEY, []string{"b"}, time.Minute)
	c.Delete(ctx, PRODUCTS_CACHE_KEY, CATEGORIES_CACHE_KEY)

	var got []string
	assert.False(t, c.Get(ctx, PRODUCTS_CACHE_KEY, &got))
	assert.False(t, c.Get(ctx, CATEGORIES_CACHE_KEY, &got))
}

func TestNew_NilClientIsNoop(t *testing.T) {
	c := New(nil)
	c.Set(context.Background(), "k", 1, time.Minute)

	var got int
	assert.False(t, c.Get(context.Background(), "k", &got))
	assert.IsType(t, Noop{}, c)
}
