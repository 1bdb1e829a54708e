package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dastari/librarian/internal/logger"
)

func TestSetAndGet(t *testing.T) {
	c := NewMemoryCache[string, int](logger.Get())

	c.Set("a", 1, 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := NewMemoryCache[string, string](logger.Get())

	c.Set("short", "gone soon", 10*time.Millisecond)
	c.Set("forever", "stays", 0)

	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok, "expired entry must not be returned")

	v, ok := c.Get("forever")
	require.True(t, ok, "zero TTL means no expiry")
	assert.Equal(t, "stays", v)
}

func TestDeleteAndClear(t *testing.T) {
	c := NewMemoryCache[string, int](logger.Get())
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestWithTTLOverridesPerCallTTL(t *testing.T) {
	c := WithTTL(NewMemoryCache[string, int](logger.Get()), 10*time.Millisecond)

	// The per-call TTL is ignored; the wrapper's fixed TTL applies
	c.Set("a", 1, time.Hour)
	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestStructValues(t *testing.T) {
	type metadata struct {
		Title string
	}
	c := NewMemoryCache[string, metadata](logger.Get())

	c.Set("s1", metadata{Title: "Something"}, 0)
	v, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "Something", v.Title)
}
