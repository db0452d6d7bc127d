package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMemoryCache_StoreFetchRemove(t *testing.T) {
	c := New[string]()

	// Fetch on empty cache
	if _, ok := c.Fetch("nonexistent"); ok {
		t.Error("Fetch on empty cache should return ok=false")
	}

	if err := c.Store("k", "v"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if got, ok := c.Fetch("k"); !ok || got != "v" {
		t.Errorf("Fetch = (%q, %v), want (v, true)", got, ok)
	}
	if c.Count() != 1 {
		t.Errorf("Count = %d, want 1", c.Count())
	}

	c.Remove("k")
	if _, ok := c.Fetch("k"); ok {
		t.Error("Fetch after Remove should return ok=false")
	}
	if c.Count() != 0 {
		t.Errorf("Count after Remove = %d, want 0", c.Count())
	}

	// Remove is idempotent
	c.Remove("k")
	if c.Count() != 0 {
		t.Errorf("Count after repeated Remove = %d, want 0", c.Count())
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := New[string]()

	if err := c.Store("k", "old"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := c.Store("k", "new"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if got, ok := c.Fetch("k"); !ok || got != "new" {
		t.Errorf("Fetch = (%q, %v), want (new, true)", got, ok)
	}
	if c.Count() != 1 {
		t.Errorf("Count after overwrite = %d, want 1", c.Count())
	}
}

func TestMemoryCache_InvalidKeys(t *testing.T) {
	c := New[string]()

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"empty", "", ErrInvalidKey},
		{"whitespace only", "   ", ErrInvalidKey},
		{"newline", "a\nb", ErrInvalidKey},
		{"carriage return", "a\rb", ErrInvalidKey},
		{"too long", strings.Repeat("k", MaxKeyLength+1), ErrKeyTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Store(tt.key, "v"); !errors.Is(err, tt.want) {
				t.Errorf("Store(%q) = %v, want %v", tt.key, err, tt.want)
			}
		})
	}

	if c.Count() != 0 {
		t.Errorf("Count after rejected stores = %d, want 0", c.Count())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := New[string]()

	if err := c.StoreWithExpiry("k", "v", time.Now().Add(50*time.Millisecond)); err != nil {
		t.Fatalf("StoreWithExpiry failed: %v", err)
	}

	// Present until the deadline passes
	if got, ok := c.Fetch("k"); !ok || got != "v" {
		t.Errorf("Fetch before expiry = (%q, %v), want (v, true)", got, ok)
	}

	time.Sleep(100 * time.Millisecond)

	// Expiration is discovered on access and the entry is purged
	if _, ok := c.Fetch("k"); ok {
		t.Error("Fetch after expiry should return ok=false")
	}
	if c.Count() != 0 {
		t.Errorf("Count after expired fetch = %d, want 0", c.Count())
	}
}

func TestMemoryCache_StoreAlreadyExpired(t *testing.T) {
	c := New[string]()

	// Storing with a past deadline stores nothing
	if err := c.StoreWithExpiry("k", "v", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("StoreWithExpiry failed: %v", err)
	}
	if _, ok := c.Fetch("k"); ok {
		t.Error("already-expired store should not be fetchable")
	}
	if c.Count() != 0 {
		t.Errorf("Count = %d, want 0", c.Count())
	}

	// And it removes any existing entry for the key
	if err := c.Store("k", "live"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := c.StoreWithExpiry("k", "dead", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("StoreWithExpiry failed: %v", err)
	}
	if _, ok := c.Fetch("k"); ok {
		t.Error("already-expired store should remove the existing entry")
	}
	if c.Count() != 0 {
		t.Errorf("Count = %d, want 0", c.Count())
	}
}

func TestMemoryCache_CountIncludesUnsweptExpired(t *testing.T) {
	c := New[string]()

	_ = c.Store("live", "v")
	_ = c.StoreWithExpiry("dying", "v", time.Now().Add(10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	// The expired entry has not been touched, so it still counts
	if c.Count() != 2 {
		t.Errorf("Count before sweep = %d, want 2", c.Count())
	}

	c.ReduceMemoryUsage()
	if c.Count() != 1 {
		t.Errorf("Count after sweep = %d, want 1", c.Count())
	}
	if _, ok := c.Fetch("live"); !ok {
		t.Error("unexpired entry should survive the sweep")
	}
}

func TestMemoryCache_Contains(t *testing.T) {
	c := New[string]()
	_ = c.Store("k", "v")
	_ = c.StoreWithExpiry("dying", "v", time.Now().Add(10*time.Millisecond))

	if !c.Contains("k") {
		t.Error("Contains(k) = false, want true")
	}
	if c.Contains("missing") {
		t.Error("Contains(missing) = true, want false")
	}

	time.Sleep(30 * time.Millisecond)
	if c.Contains("dying") {
		t.Error("Contains on expired entry = true, want false")
	}
	// Contains does not sweep
	if c.Count() != 2 {
		t.Errorf("Count after Contains = %d, want 2", c.Count())
	}
}

func TestMemoryCache_WillReplaceHook(t *testing.T) {
	type call struct {
		key      string
		incoming string
		previous string
	}
	var calls []call

	c := New[string](WithWillReplace[string](func(key, incoming, previous string) {
		calls = append(calls, call{key, incoming, previous})
	}))

	_ = c.Store("k", "first")
	if len(calls) != 0 {
		t.Fatalf("willReplace fired on initial store: %+v", calls)
	}

	_ = c.Store("k", "second")
	if len(calls) != 1 {
		t.Fatalf("willReplace fired %d times, want 1", len(calls))
	}
	if calls[0] != (call{"k", "second", "first"}) {
		t.Errorf("willReplace args = %+v", calls[0])
	}
}

func TestMemoryCache_WillRemoveHook(t *testing.T) {
	var removed []string
	c := New[string](WithWillRemove[string](func(key, _ string) {
		removed = append(removed, key)
	}))

	_ = c.Store("a", "v")
	_ = c.Store("b", "v")
	_ = c.StoreWithExpiry("c", "v", time.Now().Add(10*time.Millisecond))

	// Explicit removal fires the hook
	c.Remove("a")
	if len(removed) != 1 || removed[0] != "a" {
		t.Errorf("removed = %v, want [a]", removed)
	}

	// Expiration discovery fires the hook
	time.Sleep(30 * time.Millisecond)
	_, _ = c.Fetch("c")
	if len(removed) != 2 || removed[1] != "c" {
		t.Errorf("removed = %v, want [a c]", removed)
	}

	// Bulk clear does not fire per entry
	c.RemoveAll()
	if len(removed) != 2 {
		t.Errorf("RemoveAll fired willRemove: removed = %v", removed)
	}
}

func TestMemoryCache_RemoveAllIdempotent(t *testing.T) {
	c := New[string]()
	_ = c.Store("a", "v")
	_ = c.Store("b", "v")

	c.RemoveAll()
	if c.Count() != 0 {
		t.Errorf("Count after RemoveAll = %d, want 0", c.Count())
	}

	c.RemoveAll()
	if c.Count() != 0 {
		t.Errorf("Count after second RemoveAll = %d, want 0", c.Count())
	}

	// Cache stays usable
	if err := c.Store("c", "v"); err != nil {
		t.Fatalf("Store after RemoveAll failed: %v", err)
	}
	if got, ok := c.Fetch("c"); !ok || got != "v" {
		t.Errorf("Fetch after RemoveAll = (%q, %v), want (v, true)", got, ok)
	}
}

func TestMemoryCache_CapacityHint(t *testing.T) {
	c := New[int](WithCapacityHint[int](64))
	for i := 0; i < 100; i++ {
		_ = c.Store(strings.Repeat("k", i+1), i)
	}
	if c.Count() != 100 {
		t.Errorf("Count = %d, want 100", c.Count())
	}
}

func TestMemoryCache_ReduceMemoryUsageKeepsUnexpired(t *testing.T) {
	c := New[string]()
	_ = c.Store("forever", "v")
	_ = c.StoreWithExpiry("later", "v", time.Now().Add(time.Hour))

	c.ReduceMemoryUsage()

	if c.Count() != 2 {
		t.Errorf("Count after sweep with no expired entries = %d, want 2", c.Count())
	}
}
