package web

import (
	"context"
	"sync"
	"time"
)

// ttlStore is a thread-safe in-memory map whose entries expire after ttl
// without access. Reads refresh the expiry.
type ttlStore[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]ttlEntry[V]
	onEvict func(V)
	now     func() time.Time
}

type ttlEntry[V any] struct {
	value   V
	touched time.Time
}

// newTTLStore creates a store. onEvict, if non-nil, is called outside the lock
// for every entry removed by expiry or by deleteWhere.
func newTTLStore[V any](ttl time.Duration, onEvict func(V)) *ttlStore[V] {
	return &ttlStore[V]{
		ttl:     ttl,
		entries: make(map[string]ttlEntry[V]),
		onEvict: onEvict,
		now:     time.Now,
	}
}

func (s *ttlStore[V]) put(key string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = ttlEntry[V]{value: v, touched: s.now()}
}

func (s *ttlStore[V]) get(key string) (V, bool) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && s.now().Sub(e.touched) > s.ttl {
		delete(s.entries, key)
		s.mu.Unlock()
		s.evict(e.value)
		var zero V
		return zero, false
	}
	if ok {
		e.touched = s.now()
		s.entries[key] = e
	}
	s.mu.Unlock()
	return e.value, ok
}

// delete removes key and returns its value. onEvict is not called.
func (s *ttlStore[V]) delete(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	delete(s.entries, key)
	return e.value, ok
}

// deleteWhere removes every entry matching fn and returns how many were removed.
func (s *ttlStore[V]) deleteWhere(fn func(V) bool) int {
	return s.removeIf(func(e ttlEntry[V]) bool { return fn(e.value) })
}

// purge evicts expired entries.
func (s *ttlStore[V]) purge() int {
	now := s.now()
	return s.removeIf(func(e ttlEntry[V]) bool { return now.Sub(e.touched) > s.ttl })
}

func (s *ttlStore[V]) removeIf(fn func(ttlEntry[V]) bool) int {
	s.mu.Lock()
	var removed []V
	for k, e := range s.entries {
		if fn(e) {
			removed = append(removed, e.value)
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
	for _, v := range removed {
		s.evict(v)
	}
	return len(removed)
}

func (s *ttlStore[V]) evict(v V) {
	if s.onEvict != nil {
		s.onEvict(v)
	}
}

// startPurge starts a background goroutine that evicts expired entries every interval.
func (s *ttlStore[V]) startPurge(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.purge()
			}
		}
	}()
}
