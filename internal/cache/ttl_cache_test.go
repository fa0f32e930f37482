package cache

import (
	"testing"
	"time"

	"github.com/smallbiznis/prepaid/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewTTLCache[string, int](clk)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clk.Advance(time.Minute)

	_, ok = c.Get("a")
	assert.False(t, ok, "entry expires exactly at its deadline")
	v, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, string](nil)
	c.Set("k", "v", time.Hour)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestNilAndNoopCache(t *testing.T) {
	var nilCache *TTLCache[string, int]
	nilCache.Set("k", 1, time.Second)
	_, ok := nilCache.Get("k")
	assert.False(t, ok)
	assert.Zero(t, nilCache.Len())

	var noop Cache[string, int] = NoopCache[string, int]{}
	noop.Set("k", 1, time.Second)
	_, ok = noop.Get("k")
	assert.False(t, ok)
}
