package besttime

import (
	"context"
	"errors"

	redis "github.com/redis/go-redis/v9"
)

// RedisKV keeps one hash per device, so websocket players get the same
// best times back when they reconnect with the same device id.
type RedisKV struct {
	client *redis.Client
	hash   string
}

func NewRedisKV(client *redis.Client, deviceID string) *RedisKV {
	return &RedisKV{client: client, hash: "device:" + deviceID}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.HGet(ctx, r.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.HSet(ctx, r.hash, key, value).Err()
}
