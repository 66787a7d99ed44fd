package logocache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		c := NewMemoryCache(0, 0)
		_, ok := c.Get(ctx, "a")
		assert.False(t, ok)

		c.Set(ctx, "a", []byte("logo"))
		got, ok := c.Get(ctx, "a")
		assert.True(t, ok)
		assert.Equal(t, []byte("logo"), got)
	})

	t.Run("expired entries are dropped", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c := NewMemoryCache(time.Minute, 0)
		c.now = func() time.Time { return now }

		c.Set(ctx, "a", []byte("logo"))
		now = now.Add(2 * time.Minute)

		_, ok := c.Get(ctx, "a")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("evicts when full", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c := NewMemoryCache(time.Hour, 2)
		c.now = func() time.Time { return now }

		c.Set(ctx, "first", []byte("1"))
		now = now.Add(time.Second)
		c.Set(ctx, "second", []byte("2"))
		now = now.Add(time.Second)
		c.Set(ctx, "third", []byte("3"))

		assert.Equal(t, 2, c.Len())
		_, ok := c.Get(ctx, "first")
		assert.False(t, ok)
		_, ok = c.Get(ctx, "third")
		assert.True(t, ok)
	})

	t.Run("evicts in insertion order without ttl", func(t *testing.T) {
		c := NewMemoryCache(0, 3)

		for _, key := range []string{"a", "b", "c", "d", "e"} {
			c.Set(ctx, key, []byte(key))
		}

		assert.Equal(t, 3, c.Len())
		for _, key := range []string{"a", "b"} {
			_, ok := c.Get(ctx, key)
			assert.False(t, ok, key)
		}
		for _, key := range []string{"c", "d", "e"} {
			_, ok := c.Get(ctx, key)
			assert.True(t, ok, key)
		}
	})

	t.Run("overwrite does not evict", func(t *testing.T) {
		c := NewMemoryCache(0, 2)
		c.Set(ctx, "a", []byte("1"))
		c.Set(ctx, "b", []byte("2"))
		c.Set(ctx, "a", []byte("3"))

		assert.Equal(t, 2, c.Len())
		got, ok := c.Get(ctx, "a")
		assert.True(t, ok)
		assert.Equal(t, []byte("3"), got)
	})
}
