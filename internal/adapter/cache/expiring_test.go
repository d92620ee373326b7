package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"currency-convert-service/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestExpiringCache_GetPut(t *testing.T) {
	clock := newFakeClock()
	c := NewExpiringCache[string]("test", time.Minute, logger.NewNop(), WithClock(clock.Now))

	_, found := c.Get("missing")
	assert.False(t, found)

	c.Put("k1", "v1")
	val, found := c.Get("k1")
	require.True(t, found)
	assert.Equal(t, "v1", val)

	// repeated reads have no side effects
	for i := 0; i < 3; i++ {
		val, found = c.Get("k1")
		assert.True(t, found)
		assert.Equal(t, "v1", val)
	}
	assert.Len(t, c.entries, 1)
}

func TestExpiringCache_Expiry(t *testing.T) {
	clock := newFakeClock()
	c := NewExpiringCache[string]("test", time.Minute, logger.NewNop(), WithClock(clock.Now))

	c.Put("k1", "v1")

	clock.Advance(59 * time.Second)
	_, found := c.Get("k1")
	assert.True(t, found, "entry should be live before the TTL elapses")

	// expiry instant itself counts as expired
	clock.Advance(time.Second)
	_, found = c.Get("k1")
	assert.False(t, found)
	assert.Empty(t, c.entries, "expired entry should be removed by the lookup")
}

func TestExpiringCache_LazyEviction(t *testing.T) {
	clock := newFakeClock()
	c := NewExpiringCache[int]("test", time.Second, logger.NewNop(), WithClock(clock.Now))

	c.Put("a", 1)
	c.Put("b", 2)
	clock.Advance(2 * time.Second)

	// nothing is removed until it is looked up
	assert.Len(t, c.entries, 2)

	_, found := c.Get("a")
	assert.False(t, found)
	assert.Len(t, c.entries, 1)
	assert.Contains(t, c.entries, "b")
}

func TestExpiringCache_PutResetsExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewExpiringCache[string]("test", time.Minute, logger.NewNop(), WithClock(clock.Now))

	c.Put("k1", "v1")
	clock.Advance(40 * time.Second)
	c.Put("k1", "v1")
	clock.Advance(40 * time.Second)

	val, found := c.Get("k1")
	require.True(t, found)
	assert.Equal(t, "v1", val)

	c.Put("k1", "v2")
	val, _ = c.Get("k1")
	assert.Equal(t, "v2", val, "last write wins")
}

func TestExpiringCache_IgnoresEmptyKeyAndNilValue(t *testing.T) {
	c := NewExpiringCache[map[string]string]("test", time.Minute, logger.NewNop())

	c.Put("", map[string]string{"USD": "United States Dollar"})
	c.Put("k1", nil)

	assert.Empty(t, c.entries)
	_, found := c.Get("k1")
	assert.False(t, found)

	p := NewExpiringCache[*decimal.Decimal]("ptr", time.Minute, logger.NewNop())
	p.Put("k1", nil)
	assert.Empty(t, p.entries)
}

func TestExpiringCache_RealTime(t *testing.T) {
	c := NewExpiringCache[decimal.Decimal]("test", 100*time.Millisecond, logger.NewNop())

	c.Put("USDEUR", decimal.RequireFromString("0.91"))

	time.Sleep(50 * time.Millisecond)
	val, found := c.Get("USDEUR")
	require.True(t, found)
	assert.True(t, val.Equal(decimal.RequireFromString("0.91")))

	time.Sleep(60 * time.Millisecond)
	_, found = c.Get("USDEUR")
	assert.False(t, found)
}

func TestExpiringCache_Concurrent(t *testing.T) {
	c := NewExpiringCache[int]("test", time.Minute, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			for j := 0; j < 100; j++ {
				c.Put(key, i)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		val, found := c.Get(fmt.Sprintf("k%d", i))
		require.True(t, found)
		assert.Equal(t, i, val%5)
	}
}
