package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	c := New[int](0, 0)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("A")
	assert.False(t, ok, "keys are case sensitive")
	_, ok = c.Get("a ")
	assert.False(t, ok, "keys are not trimmed")
}

func TestCache_EvictsOldest(t *testing.T) {
	c := New[string](2, 0)
	clock := time.Unix(0, 0)
	c.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	c.Set("first", "1")
	c.Set("second", "2")
	c.Set("second", "2b")
	assert.Equal(t, 2, c.Len(), "overwriting an existing key does not evict")

	c.Set("third", "3")
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("first")
	assert.False(t, ok)
	v, ok := c.Get("third")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestCache_TTL(t *testing.T) {
	c := New[int](0, time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Set("k", 7)
	now = now.Add(30 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_StatsAndClear(t *testing.T) {
	c := New[int](10, 0)
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")

	stats := c.Stats()
	assert.Equal(t, Stats{Size: 1, MaxSize: 10, TotalHits: 2}, stats)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
