package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow counts requests per key in fixed windows backed by Redis, so
// every instance of the service shares one view of the rate.
type RedisWindow struct {
	client *redis.Client
	window time.Duration
}

func NewRedisWindow(client *redis.Client, window time.Duration) *RedisWindow {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisWindow{client: client, window: window}
}

// Incr bumps the counter for the key's current window and returns the new
// count. The window TTL is set on first increment.
func (c *RedisWindow) Incr(ctx context.Context, key string) (int64, error) {
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(c.window.Seconds()))

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, c.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment rate counter: %w", err)
	}

	return incr.Val(), nil
}
