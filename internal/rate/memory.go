package rate

import (
	"context"
	"sync"
	"time"
)

// window tracks one key's hit count until resetAt, after which the key
// starts a fresh window.
type window struct {
	hits    int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory. It is the
// dev/test stand-in for the redis limiter and must not be used with more
// than one replica.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int
	span    time.Duration
	sweep   time.Duration
	sweptAt time.Time
	windows map[string]window
}

// MemoryOption adjusts a MemoryLimiter at construction time.
type MemoryOption func(*MemoryLimiter)

// WithSweepInterval sets how often expired windows are dropped from the
// map. The default is one window span.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(l *MemoryLimiter) { l.sweep = d }
}

func NewMemory(max int, span time.Duration, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		max:     max,
		span:    span,
		sweep:   span,
		sweptAt: time.Now(),
		windows: make(map[string]window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, now time.Time) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.sweptAt) >= l.sweep {
		l.dropExpired(now)
	}

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = window{hits: 1, resetAt: now.Add(l.span)}
		return true, 0, nil
	}

	if w.hits >= l.max {
		retryAfter := w.resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}

	w.hits++
	l.windows[key] = w
	return true, 0, nil
}

// dropExpired removes windows whose reset time has passed. Callers hold the
// mutex.
func (l *MemoryLimiter) dropExpired(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.sweptAt = now
}
