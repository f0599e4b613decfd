package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiresEntries(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, int](WithNow(func() time.Time { return now }))

	c.Set("a", 1, time.Minute)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestTTLCacheNonPositiveTTLSkipsStore(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("a", 1, time.Minute)
	c.Set("a", 2, 0)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestViewCacheInvalidate(t *testing.T) {
	ttl := 10 * time.Second
	c := NewViewCache(func() time.Duration { return ttl })

	c.Set("daily-trend", "7", []int{1})
	c.Set("summary", "", map[string]float64{"total_sales": 1})
	_, ok := c.Get("Daily-Trend", " 7 ")
	assert.True(t, ok)

	c.Invalidate()
	_, ok = c.Get("summary", "")
	assert.False(t, ok)

	ttl = 0
	c.Set("summary", "", 1)
	_, ok = c.Get("summary", "")
	assert.False(t, ok)
}
