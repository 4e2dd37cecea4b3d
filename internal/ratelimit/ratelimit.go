// Package ratelimit caps how many replies a single client may request per hour.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long an untouched client bucket is kept before it is dropped.
const idleAfter = 2 * time.Hour

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter grants each key perHour requests per hour, refilled continuously.
// A non-positive perHour disables limiting.
type Limiter struct {
	perHour int
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func New(perHour int) *Limiter {
	return &Limiter{
		perHour: perHour,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Allow(key string) bool {
	if l == nil || l.perHour <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(l.perHour)), l.perHour)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Len reports how many client buckets are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleAfter {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= idleAfter {
			delete(l.buckets, key)
		}
	}
}
