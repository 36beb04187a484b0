package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTTL_SetGetExpire(t *testing.T) {
	c := New[string]()

	c.Set("k", "v", 100*time.Millisecond)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(150 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on read")

	c.Set("k", "v2", 100*time.Millisecond)
	v, ok = c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestTTL_ExpiryBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New[int](WithClock(clock.Now))

	c.Set("k", 1, time.Minute)

	clock.Advance(time.Minute - time.Nanosecond)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry must be absent once now == expiry")
}

func TestTTL_DefaultTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New[int](WithClock(clock.Now))

	c.Set("a", 1, 0)
	c.Set("b", 2, -time.Second)

	clock.Advance(DefaultTTL - time.Second)
	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.True(t, okA)
	assert.True(t, okB)

	clock.Advance(time.Second)
	_, okA = c.Get("a")
	_, okB = c.Get("b")
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestTTL_CustomDefaultTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New[int](WithClock(clock.Now), WithDefaultTTL(time.Minute))

	c.Set("a", 1, 0)
	clock.Advance(time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTL_SetOverwrites(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New[string](WithClock(clock.Now))

	c.Set("k", "old", time.Hour)
	c.Set("k", "new", time.Minute)

	clock.Advance(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok, "overwrite must replace expiry too")
}

func TestTTL_Clear(t *testing.T) {
	c := New[int]()
	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	require.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestTTL_ConcurrentAccess(t *testing.T) {
	c := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			c.Set(key, i, time.Hour)
			c.Get(key)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
}

func TestTokenKey(t *testing.T) {
	assert.Equal(t, "token-data:solana-So11111111111111111111111111111111111111112",
		TokenKey("solana", "So11111111111111111111111111111111111111112"))
}
