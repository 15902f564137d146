package ratelimit_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync/internal/clock"
	"catalogsync/internal/ratelimit"
)

func TestWindow_ExhaustAndRoll(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	w := ratelimit.NewWindow(3, time.Minute, clk)

	for i := 0; i < 3; i++ {
		require.True(t, w.TryAcquire(), "request %d should pass", i)
	}
	assert.False(t, w.TryAcquire())
	assert.Equal(t, 3, w.Snapshot().Count, "a denial must not bump the counter")
	assert.Equal(t, time.Minute, w.TimeUntilReset())

	clk.Advance(20 * time.Second)
	assert.Equal(t, 40*time.Second, w.TimeUntilReset())
	assert.False(t, w.TryAcquire())

	clk.Advance(41 * time.Second)
	require.True(t, w.TryAcquire())
	s := w.Snapshot()
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, clk.Now(), s.WindowStart)
}

func TestWindow_BoundaryIsStillSameWindow(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	w := ratelimit.NewWindow(1, time.Minute, clk)
	require.True(t, w.TryAcquire())

	clk.Advance(time.Minute)
	assert.False(t, w.TryAcquire(), "window rolls only once elapsed exceeds its length")
	assert.Equal(t, time.Duration(0), w.TimeUntilReset())

	clk.Advance(time.Nanosecond)
	assert.True(t, w.TryAcquire())
}

func TestWindow_Reset(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	w := ratelimit.NewWindow(2, time.Minute, clk)
	w.TryAcquire()
	w.TryAcquire()
	require.False(t, w.TryAcquire())

	clk.Advance(10 * time.Second)
	w.Reset()
	assert.Equal(t, 0, w.Snapshot().Count)
	assert.Equal(t, time.Minute, w.TimeUntilReset())
	assert.True(t, w.TryAcquire())
}

func TestWindow_ConcurrentCallersShareLimit(t *testing.T) {
	w := ratelimit.NewWindow(5, time.Hour, clock.NewFake(time.Unix(0, 0)))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.TryAcquire() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, allowed)
	assert.Equal(t, 5, w.Snapshot().Count)
}

func TestNewWindow_Defaults(t *testing.T) {
	w := ratelimit.NewWindow(0, 0, nil)
	s := w.Snapshot()
	assert.Equal(t, 1, s.Limit)
	assert.Equal(t, time.Minute, s.Length)
}
