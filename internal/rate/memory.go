package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process fixed window limiter for setups without
// redis. Windows reset on the wall-clock boundary like the redis version.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu   sync.Mutex
	wins map[string]*memWindow
}

type memWindow struct {
	start time.Time
	hits  int64
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:    int64(max),
		Window: window,
		wins:   make(map[string]*memWindow),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.wins[key]
	if !ok || w.start.Before(winStart) {
		w = &memWindow{start: winStart}
		l.wins[key] = w
	}
	w.hits++

	// drop stale windows opportunistically
	if len(l.wins) > 4096 {
		for k, ww := range l.wins {
			if ww.start.Before(winStart) {
				delete(l.wins, k)
			}
		}
	}

	allowed := w.hits <= l.Max
	remaining := l.Max - w.hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: w.hits,
		WindowTTL:   w.start.Add(l.Window).Sub(now),
	}
	if !allowed {
		res.RetryAfter = res.WindowTTL
	}
	return res, nil
}
