package tmdb

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := newCache(time.Hour, clockwork.NewFakeClock())

	// Miss
	_, ok := c.get("movie/603")
	assert.False(t, ok, "empty cache should miss")

	c.set("movie/603", &Movie{ID: 603, Title: "The Matrix"})
	got, ok := c.get("movie/603")
	require.True(t, ok, "should hit after set")
	assert.Equal(t, "The Matrix", got.(*Movie).Title)

	// Same id, other kind
	_, ok = c.get("tv/603")
	assert.False(t, ok, "different path should miss")

	c.set("tv/1396", &Tv{ID: 1396, Name: "Breaking Bad"})
	got, ok = c.get("tv/1396")
	require.True(t, ok)
	assert.Equal(t, "Breaking Bad", got.(*Tv).Name)

	_, ok = c.get("movie/603")
	assert.True(t, ok, "first entry should still exist")
}

func TestCache_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newCache(10*time.Minute, clock)

	c.set("person/6384", &Person{ID: 6384})
	_, ok := c.get("person/6384")
	require.True(t, ok)

	clock.Advance(11 * time.Minute)
	_, ok = c.get("person/6384")
	assert.False(t, ok, "should miss after TTL")

	// Expired entries are pruned on the next write.
	c.set("person/1", &Person{ID: 1})
	assert.Equal(t, 1, c.len())
}

func TestCache_Disabled(t *testing.T) {
	c := newCache(0, clockwork.NewFakeClock())
	c.set("movie/603", &Movie{ID: 603})
	_, ok := c.get("movie/603")
	assert.False(t, ok)
}
