package memory

import (
	"context"
	"sync"
	"time"
)

// RequestDeduper is the in-process counterpart of the Redis request deduper,
// used in tests and when Redis is disabled. Entries expire lazily on access.
type RequestDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewRequestDeduper creates an in-memory deduper.
func NewRequestDeduper(ttl time.Duration) *RequestDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RequestDeduper{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// MarkSeen records the request id and reports whether it was seen before.
func (d *RequestDeduper) MarkSeen(_ context.Context, requestID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if expiry, ok := d.seen[requestID]; ok && now.Before(expiry) {
		return true, nil
	}
	d.seen[requestID] = now.Add(d.ttl)

	// Drop expired entries opportunistically to bound the map.
	for id, expiry := range d.seen {
		if now.After(expiry) {
			delete(d.seen, id)
		}
	}
	return false, nil
}
