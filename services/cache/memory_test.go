package cachesvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chikoro/core"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	core.NowFunc = func() time.Time { return now }
	defer func() { core.NowFunc = time.Now }()

	t.Run("get missing key", func(t *testing.T) {
		var v string
		hit, err := cache.Get(ctx, "missing", &v)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "forms", []string{"Form 1", "Form 2"}, time.Minute))
		var forms []string
		hit, err := cache.Get(ctx, "forms", &forms)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, []string{"Form 1", "Form 2"}, forms)
	})

	t.Run("entries expire", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "news", "hello", time.Minute))
		now = now.Add(time.Minute)
		var v string
		hit, err := cache.Get(ctx, "news", &v)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "a", 1, 0))
		require.NoError(t, cache.Delete(ctx, "a", "unknown"))
		var v int
		hit, _ := cache.Get(ctx, "a", &v)
		assert.False(t, hit)
	})

	t.Run("incr keeps the first ttl", func(t *testing.T) {
		n, err := cache.Incr(ctx, "attempts", 15*time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		now = now.Add(10 * time.Minute)
		n, err = cache.Incr(ctx, "attempts", 15*time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		var stored int64
		hit, err := cache.Get(ctx, "attempts", &stored)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.EqualValues(t, 2, stored)

		now = now.Add(5 * time.Minute)
		n, err = cache.Incr(ctx, "attempts", 15*time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})
}
