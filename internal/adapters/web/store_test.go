package web

import (
	"testing"
	"time"
)

func TestTTLStore_SlidingExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	var evicted []string
	s := newTTLStore(10*time.Minute, func(v string) { evicted = append(evicted, v) })
	s.now = func() time.Time { return now }

	s.put("a", "alpha")
	s.put("b", "beta")

	now = now.Add(8 * time.Minute)
	if _, ok := s.get("a"); !ok {
		t.Fatal("a expired too early")
	}

	now = now.Add(8 * time.Minute)
	if n := s.purge(); n != 1 {
		t.Errorf("purge removed %d, want 1", n)
	}
	if _, ok := s.get("a"); !ok {
		t.Error("a should survive: it was read 8 minutes ago")
	}
	if _, ok := s.get("b"); ok {
		t.Error("b should have expired")
	}
	if len(evicted) != 1 || evicted[0] != "beta" {
		t.Errorf("evicted = %v", evicted)
	}
}

func TestTTLStore_DeleteDoesNotEvict(t *testing.T) {
	var evicted int
	s := newTTLStore(time.Minute, func(int) { evicted++ })
	s.put("x", 1)
	s.put("y", 2)
	s.put("z", 3)

	if v, ok := s.delete("x"); !ok || v != 1 {
		t.Errorf("delete = %v, %v", v, ok)
	}
	if n := s.deleteWhere(func(v int) bool { return v > 2 }); n != 1 {
		t.Errorf("deleteWhere removed %d, want 1", n)
	}
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1 (only deleteWhere evicts)", evicted)
	}
}
