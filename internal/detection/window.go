package detection

import (
	"sync"
	"time"
)

// windowBuffer tracks event timestamps per (session, event type) for
// frequency-based escalation. Entries older than ttl are pruned on access.
type windowBuffer struct {
	mu     sync.Mutex
	events map[string][]time.Time
	ttl    time.Duration
}

func newWindowBuffer(ttl time.Duration) *windowBuffer {
	return &windowBuffer{
		events: make(map[string][]time.Time),
		ttl:    ttl,
	}
}

func bufferKey(sessionKey, eventType string) string {
	return sessionKey + "#" + eventType
}

// Add records one occurrence and returns how many occurrences fall within
// `within` of `at`, the new one included.
func (w *windowBuffer) Add(sessionKey, eventType string, at time.Time, within time.Duration) int {
	key := bufferKey(sessionKey, eventType)

	w.mu.Lock()
	defer w.mu.Unlock()

	times := append(w.events[key], at)

	// prune anything past the buffer ttl
	cutoff := at.Add(-w.ttl)
	kept := times[:0]
	for _, ts := range times {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.events[key] = kept

	count := 0
	windowStart := at.Add(-within)
	for _, ts := range kept {
		if !ts.Before(windowStart) {
			count++
		}
	}
	return count
}

// DropSession forgets all buffers for one session key.
func (w *windowBuffer) DropSession(sessionKey string) {
	prefix := sessionKey + "#"

	w.mu.Lock()
	defer w.mu.Unlock()

	for key := range w.events {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(w.events, key)
		}
	}
}
