package suntime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores aggregated times per coordinate and day.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Connect returns a client for addr, or nil when addr is empty.
// A nil client means the service runs without a cache.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Key builds the cache key for a coordinate on a day.
func Key(lat, lng float64, day string) string {
	return fmt.Sprintf("times:%.4f:%.4f:%s", lat, lng, day)
}

// Get returns the cached entry and whether it was present.
func (c *RedisCache) Get(ctx context.Context, key string) (Times, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Times{}, false, nil
	}
	if err != nil {
		return Times{}, false, err
	}
	var t Times
	if err := json.Unmarshal(raw, &t); err != nil {
		return Times{}, false, fmt.Errorf("decode cached times: %w", err)
	}
	return t, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, t Times) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
