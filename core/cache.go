package core

import (
	"context"
	"time"
)

// Cache is a shared key/value store. Values are JSON encoded.
type Cache interface {
	// Get decodes the value stored under key into dest. It reports false when the key is missing.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr increments the counter under key. ttl is applied when the counter is created.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
