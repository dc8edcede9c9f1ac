// Package ratelimit implements fixed-window request throttling keyed by
// (category, ip, identifier). Buckets are process-local and volatile: losing
// them on restart degrades protection for one window but never blocks a
// legitimate caller beyond it.
package ratelimit

import (
	"sync"
	"time"

	"github.com/examguard/integrity-backend/internal/policy"
)

// Result reports the outcome of one Consume call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	windowStart time.Time
	count       int
}

// Limiter holds one counter bucket per composite key. Read-and-increment is
// atomic per limiter via the mutex.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	categories map[string]policy.RateCategory
	now        func() time.Time
}

// New creates a limiter with the given category policies.
func New(categories map[string]policy.RateCategory) *Limiter {
	return &Limiter{
		buckets:    make(map[string]*bucket),
		categories: categories,
		now:        time.Now,
	}
}

// Consume admits or rejects one request for the composite key. Unknown
// categories are always admitted; an unconfigured route must not lock out
// traffic.
func (l *Limiter) Consume(ip, identifier, category string) Result {
	cat, ok := l.categories[category]
	if !ok || cat.Limit <= 0 || cat.WindowSeconds <= 0 {
		return Result{Allowed: true}
	}

	key := category + "|" + ip + "|" + identifier
	window := cat.Window()

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Truncate(window)

	b, exists := l.buckets[key]
	if !exists || !b.windowStart.Equal(windowStart) {
		b = &bucket{windowStart: windowStart}
		l.buckets[key] = b
	}

	b.count++
	if b.count > cat.Limit {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: windowStart.Add(window).Sub(now),
		}
	}
	return Result{Allowed: true, Remaining: cat.Limit - b.count}
}

// Prune drops buckets whose window ended before the cutoff. Called
// opportunistically; correctness never depends on it.
func (l *Limiter) Prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		cat, ok := l.categories[keyCategory(key)]
		if !ok {
			delete(l.buckets, key)
			removed++
			continue
		}
		if b.windowStart.Add(cat.Window()).Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

func keyCategory(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			return key[:i]
		}
	}
	return key
}
