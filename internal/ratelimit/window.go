package ratelimit

import (
	"sync"
	"time"

	"catalogsync/internal/clock"
)

// Window is a fixed-window request counter shared by every caller of the
// short-video platform. The window rolls over lazily on the next request.
type Window struct {
	mu     sync.Mutex
	limit  int
	length time.Duration
	clock  clock.Clock
	count  int
	start  time.Time
}

type Snapshot struct {
	Count       int
	Limit       int
	WindowStart time.Time
	Length      time.Duration
	ResetIn     time.Duration
}

func NewWindow(limit int, length time.Duration, c clock.Clock) *Window {
	if c == nil {
		c = clock.Real{}
	}
	if limit < 1 {
		limit = 1
	}
	if length <= 0 {
		length = time.Minute
	}
	return &Window{limit: limit, length: length, clock: c, start: c.Now()}
}

// roll must be called with mu held.
func (w *Window) roll(now time.Time) {
	if now.Sub(w.start) > w.length {
		w.count = 0
		w.start = now
	}
}

// TryAcquire takes one slot in the current window. A denied call leaves the
// counter untouched.
func (w *Window) TryAcquire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.roll(w.clock.Now())
	if w.count >= w.limit {
		return false
	}
	w.count++
	return true
}

func (w *Window) TimeUntilReset() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.untilReset(w.clock.Now())
}

func (w *Window) untilReset(now time.Time) time.Duration {
	left := w.length - now.Sub(w.start)
	if left < 0 {
		return 0
	}
	return left
}

// Reset zeroes the counter and restarts the window now.
func (w *Window) Reset() {
	w.mu.Lock()
	w.count = 0
	w.start = w.clock.Now()
	w.mu.Unlock()
}

func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.clock.Now()
	w.roll(now)
	return Snapshot{
		Count:       w.count,
		Limit:       w.limit,
		WindowStart: w.start,
		Length:      w.length,
		ResetIn:     w.untilReset(now),
	}
}
