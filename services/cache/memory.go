package cachesvc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero: never
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache keeps entries in process. Values go through JSON like in Redis so both behave the same.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

var _ core.Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return core.Now().Add(ttl)
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && entry.expired(core.Now()) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, errors.Wrapf(json.Unmarshal(entry.data, dest), "decoding %q", key)
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{data: data, expiresAt: expiry(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	entry, ok := c.entries[key]
	if ok && !entry.expired(core.Now()) {
		if err := json.Unmarshal(entry.data, &n); err != nil {
			return 0, errors.Wrapf(err, "decoding %q", key)
		}
	} else {
		entry = memoryEntry{expiresAt: expiry(ttl)}
	}
	n++
	entry.data, _ = json.Marshal(n)
	c.entries[key] = entry
	return n, nil
}
