package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(50*time.Millisecond, time.Minute)

	c.Set("key", "value")

	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)

	time.Sleep(100 * time.Millisecond)

	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestCacheSetWithExpiration(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)

	c.Set("key", 42, 50*time.Millisecond)

	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, 42, got)

	time.Sleep(100 * time.Millisecond)

	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestCacheFlush(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)

	c.Set(CacheKeyClientLimiter("127.0.0.1"), "limiter")
	c.Flush()

	_, ok := c.Get(CacheKeyClientLimiter("127.0.0.1"))
	assert.False(t, ok)
}
