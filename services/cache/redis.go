// Package cachesvc implements core.Cache on Redis, or in process when Redis is not configured.
package cachesvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

type redisCache struct {
	client *redis.Client
	prefix string
}

var _ core.Cache = (*redisCache)(nil)

// NewRedisCache namespaces every key with the app name so several apps can share the server.
func NewRedisCache(client *redis.Client, conf *core.Config) *redisCache {
	return &redisCache{client: client, prefix: conf.AppName + ":"}
}

// NewRedisClient connects to the configured server and checks it answers.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// New returns the Redis cache when an address is configured, the in-memory cache otherwise.
func New(conf *core.Config) (core.Cache, error) {
	if conf.Redis.Address == "" {
		return NewMemoryCache(), nil
	}
	client, err := NewRedisClient(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return NewRedisCache(client, conf), nil
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "getting %q", key)
	}
	return true, errors.Wrapf(json.Unmarshal(data, dest), "decoding %q", key)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	return errors.Wrapf(c.client.Set(ctx, c.prefix+key, data, ttl).Err(), "setting %q", key)
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, c.prefix+k)
	}
	return errors.Wrap(c.client.Del(ctx, prefixed...).Err(), "deleting keys")
}

func (c *redisCache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	key = c.prefix + key
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "incrementing %q", key)
	}
	if n == 1 && ttl > 0 {
		if err = c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, errors.Wrapf(err, "setting ttl of %q", key)
		}
	}
	return n, nil
}
