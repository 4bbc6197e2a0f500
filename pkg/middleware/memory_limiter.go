package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLoginLimiter keeps one token bucket per key. A bucket holds burst
// attempts and refills completely over window.
type MemoryLoginLimiter struct {
	limit  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*loginBucket
}

type loginBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLoginLimiter creates an in-process limiter
func NewMemoryLoginLimiter(burst int, window time.Duration) *MemoryLoginLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &MemoryLoginLimiter{
		limit:   rate.Every(window / time.Duration(burst)),
		burst:   burst,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*loginBucket),
	}
}

// Allow takes one token from the key's bucket
func (l *MemoryLoginLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &loginBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.limiter.AllowN(now, 1), nil
}

// Reset drops the key's bucket
func (l *MemoryLoginLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
	return nil
}

// Cleanup removes buckets idle for longer than the window. Such buckets are
// full again, so dropping them changes nothing.
func (l *MemoryLoginLimiter) Cleanup() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.window {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every window until ctx is done
func (l *MemoryLoginLimiter) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}
