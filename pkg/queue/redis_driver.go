package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDriver persists jobs in a Redis list so they survive restarts and
// can be shared between processes.
type RedisDriver struct {
	rdb *redis.Client
	key string
}

// NewRedisDriver returns a driver backed by the given Redis client.
func NewRedisDriver(rdb *redis.Client, key string) *RedisDriver {
	if key == "" {
		key = "vastra:queue:default"
	}
	return &RedisDriver{rdb: rdb, key: key}
}

func (d *RedisDriver) Push(payload []byte) error {
	return d.rdb.RPush(context.Background(), d.key, payload).Err()
}

// Pop blocks for up to two seconds waiting for a job, returning (nil, nil)
// on timeout so workers can re-check their context.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.rdb.BLPop(ctx, 2*time.Second, d.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BLPOP returns [key, value]
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}
