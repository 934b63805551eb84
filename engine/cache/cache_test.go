package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheAddGetRemove(t *testing.T) {
	c := NewCache("test")
	assert.Equal(t, "test", c.Name())
	assert.False(t, c.Has("a"))

	c.Add("a", 42)
	assert.True(t, c.Has("a"))
	assert.Equal(t, 1, c.Len())

	v, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	c.Remove("a")
	assert.False(t, c.Has("a"))
	_, err = c.Get("a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Removing a missing key is a no-op.
	c.Remove("a")
}

func TestCacheOverwriteKeepsLatest(t *testing.T) {
	c := NewCache("test")
	c.Add("k", "old")
	c.Add("k", "new")

	v, err := c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.Len())
}

func TestCacheKeysAndClear(t *testing.T) {
	c := NewCache("test")
	c.Add("a", 1)
	c.Add("b", 2)
	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestManagerWellKnownCaches(t *testing.T) {
	m := NewManager()

	assert.Equal(t, Tilemap, m.Tilemap().Name())
	assert.Equal(t, BitmapFont, m.BitmapFont().Name())
	assert.Equal(t, JSON, m.JSON().Name())

	// Same name always resolves to the same cache instance.
	assert.Same(t, m.Tilemap(), m.Custom(Tilemap))
}

func TestManagerCustomCacheIsLazy(t *testing.T) {
	m := NewManager()
	c := m.Custom("spritesheets")
	c.Add("hero", []byte{1, 2, 3})

	assert.Same(t, c, m.Custom("spritesheets"))
	assert.True(t, m.Custom("spritesheets").Has("hero"))
}

func TestManagerDestroyClearsEverything(t *testing.T) {
	m := NewManager()
	m.Text().Add("a", "x")
	m.Custom("extra").Add("b", "y")

	m.Destroy()
	assert.Equal(t, 0, m.Text().Len())
	assert.Equal(t, 0, m.Custom("extra").Len())
}
