package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache implementation backed by Redis, for deployments running
// more than one scanner process against the same upstream quota. Values are
// JSON-encoded and keys are prefixed with the namespace. Redis failures
// degrade to a cache miss rather than failing the caller.
type Redis[V any] struct {
	rdb       *redis.Client
	namespace string
	logger    *log.Logger
}

// NewRedis creates a Redis-backed cache for one namespace.
func NewRedis[V any](rdb *redis.Client, namespace string, logger *log.Logger) *Redis[V] {
	if logger == nil {
		logger = log.Default()
	}
	return &Redis[V]{rdb: rdb, namespace: namespace, logger: logger}
}

func (c *Redis[V]) key(key string) string {
	return c.namespace + ":" + key
}

// Get returns the cached value if present. Expiry is enforced by Redis
// itself via the TTL given at Set time.
func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V

	b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("redis cache get %s: %v", c.key(key), err)
		}
		return zero, false
	}

	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		c.logger.Printf("redis cache decode %s: %v", c.key(key), err)
		return zero, false
	}
	return v, true
}

// Set stores value under key with the given TTL. Errors are logged and
// swallowed; the next Get simply misses.
func (c *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
			c.logger.Printf("redis cache del %s: %v", c.key(key), err)
		}
		return
	}

	b, err := json.Marshal(value)
	if err != nil {
		c.logger.Printf("redis cache encode %s: %v", c.key(key), err)
		return
	}
	if err := c.rdb.Set(ctx, c.key(key), b, ttl).Err(); err != nil {
		c.logger.Printf("redis cache set %s: %v", c.key(key), err)
	}
}

var _ Cache[bool] = (*Redis[bool])(nil)
