package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	PRODUCTS_CACHE_KEY   = "catalog:products"
	CATEGORIES_CACHE_KEY = "catalog:categories"
	GRAINS_CACHE_KEY     = "catalog:grains:active"
	PROMOS_CACHE_KEY     = "catalog:promos:active"
	PRODUCT_CACHE_PREFIX = "catalog:product:"
	DASHBOARD_STATS_KEY  = "dashboard:stats"
	TOP_PRODUCTS_KEY     = "dashboard:top-products:"
	MAX_TOP_PRODUCTS     = 50
	CACHE_TTL_SHORT      = 1 * time.Minute
	CACHE_TTL_MEDIUM     = 30 * time.Minute
	CACHE_TTL_LONG       = 2 * time.Hour
)

// TopProductsKeys lists every key the dashboard may cache a ranking under.
func TopProductsKeys() []string {
	keys := make([]string, 0, MAX_TOP_PRODUCTS)
	for limit := 1; limit <= MAX_TOP_PRODUCTS; limit++ {
		keys = append(keys, fmt.Sprintf("%s%d", TOP_PRODUCTS_KEY, limit))
	}
	return keys
}

// Cache stores JSON-encoded values. Failures never reach the caller's
// response path: a miss is reported and the caller falls back to the DB.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type redisCache struct {
	client *redis.Client
}

// New wraps client. A nil client yields a cache that never hits.
func New(client *redis.Client) Cache {
	if client == nil {
		return Noop{}
	}
	return &redisCache{client: client}
}

func (r *redisCache) Get(ctx context.Context, key string, dest any) bool {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "redis get failed, falling back to DB", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		slog.WarnContext(ctx, "cached value undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.WarnContext(ctx, "redis set failed", "key", key, "error", err)
	}
}

func (r *redisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "redis del failed", "keys", keys, "error", err)
	}
}

type Noop struct{}

func (Noop) Get(context.Context, string, any) bool { return false }
func (Noop) Set(context.Context, string, any, time.Duration) {}
func (Noop) Delete(context.Context, ...string) {}
