package cache

import (
	"time"

	"github.com/jonwraymond/objcache/list"
)

// entry is one stored item. The size field is only maintained by
// ImageMemoryCache; the base cache leaves it at zero.
type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
	loc       list.Location[string]
	size      uint64

	// accessed is set on the first fetch hit. Entries that have never been
	// fetched are considered less recently used than any fetched entry and
	// leave in insertion order.
	accessed bool
}

// expired reports whether the entry's deadline has passed.
func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is a generic in-memory object store with per-entry
// expiration. Expired entries are purged lazily on access, never on a
// timer.
//
// Contract:
// - Concurrency: not safe for concurrent use; callers serialize externally.
// - Expiration: Fetch on an expired key removes the entry and reports a miss.
// - Hooks: willReplace/willRemove callbacks fire before mutation, except
//   during RemoveAll, which is a bulk clear.
type MemoryCache[V any] struct {
	entries map[string]*entry[V]

	// order tracks recency: least recently used at the head, most at the
	// tail. Each entry holds the Location of its own node so touching and
	// removal are O(1).
	order *list.List[string]

	willReplace func(key string, incoming, previous V)
	willRemove  func(key string, value V)
}

// Option configures a MemoryCache.
type Option[V any] func(*MemoryCache[V])

// WithWillReplace installs a callback fired before an existing entry's
// value is replaced by a store. The entry being replaced is still present
// when the callback runs.
func WithWillReplace[V any](fn func(key string, incoming, previous V)) Option[V] {
	return func(c *MemoryCache[V]) {
		c.willReplace = fn
	}
}

// WithWillRemove installs a callback fired before an entry is removed by
// explicit removal, expiration, or eviction. RemoveAll does not fire it.
func WithWillRemove[V any](fn func(key string, value V)) Option[V] {
	return func(c *MemoryCache[V]) {
		c.willRemove = fn
	}
}

// WithCapacityHint sizes the internal map for an expected number of
// entries, avoiding rehashing while the cache warms up.
func WithCapacityHint[V any](n int) Option[V] {
	return func(c *MemoryCache[V]) {
		if n > 0 {
			c.entries = make(map[string]*entry[V], n)
		}
	}
}

// New creates an empty MemoryCache.
func New[V any](opts ...Option[V]) *MemoryCache[V] {
	c := &MemoryCache[V]{
		entries: make(map[string]*entry[V]),
		order:   list.New[string](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store inserts or overwrites the entry for key with no expiration. The
// entry stays in the cache until it is removed or evicted.
func (c *MemoryCache[V]) Store(key string, value V) error {
	return c.store(key, value, time.Time{})
}

// StoreWithExpiry inserts or overwrites the entry for key with an
// expiration instant. Storing with an instant that has already passed
// removes any existing entry and stores nothing: the entry would be purged
// on first access anyway.
func (c *MemoryCache[V]) StoreWithExpiry(key string, value V, expiresAt time.Time) error {
	return c.store(key, value, expiresAt)
}

func (c *MemoryCache[V]) store(key string, value V, expiresAt time.Time) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if !expiresAt.IsZero() && !expiresAt.After(time.Now()) {
		c.Remove(key)
		return nil
	}

	if prev, ok := c.entries[key]; ok {
		if c.willReplace != nil {
			c.willReplace(key, value, prev.value)
		}
		// A replace is not an access; the entry keeps its recency.
		prev.value = value
		prev.expiresAt = expiresAt
		return nil
	}

	e := &entry[V]{value: value, expiresAt: expiresAt}
	e.loc = c.order.Append(key)
	c.entries[key] = e
	return nil
}

// Fetch retrieves the value stored for key. If the entry exists but has
// expired it is removed (firing willRemove) and Fetch reports a miss. A
// miss is not an error.
func (c *MemoryCache[V]) Fetch(key string) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if e.expired(time.Now()) {
		c.removeEntry(key, e)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Contains reports whether an unexpired entry exists for key without
// counting as an access or sweeping the entry.
func (c *MemoryCache[V]) Contains(key string) bool {
	e, ok := c.entries[key]
	return ok && !e.expired(time.Now())
}

// Remove evicts the named entry if present, firing willRemove. No-op
// otherwise.
func (c *MemoryCache[V]) Remove(key string) {
	if e, ok := c.entries[key]; ok {
		c.removeEntry(key, e)
	}
}

// RemoveAll evicts every entry regardless of expiration. This is a bulk
// clear: willRemove does not fire per entry.
func (c *MemoryCache[V]) RemoveAll() {
	clear(c.entries)
	c.order.RemoveAll()
}

// ReduceMemoryUsage sweeps and evicts all currently-expired entries,
// firing willRemove for each. Meant to be called when the host process
// receives a low-memory signal; the cache never polls for pressure itself.
func (c *MemoryCache[V]) ReduceMemoryUsage() {
	now := time.Now()
	for key, e := range c.entries {
		if e.expired(now) {
			c.removeEntry(key, e)
		}
	}
}

// Count returns the number of currently-stored entries, including expired
// entries that have not yet been swept.
func (c *MemoryCache[V]) Count() int {
	return len(c.entries)
}

// touch records an access: the entry's node moves to the
// most-recently-used end of the recency list. O(1).
func (c *MemoryCache[V]) touch(key string) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	if err := c.order.RemoveAt(e.loc); err != nil {
		return
	}
	e.loc = c.order.Append(key)
	e.accessed = true
}

// leastRecentlyUsedKey returns the next eviction victim. Entries that have
// never been fetched leave first, in insertion order; once every entry has
// been fetched the least recently fetched one is next.
func (c *MemoryCache[V]) leastRecentlyUsedKey() (string, bool) {
	victim, ok := c.order.First()
	if !ok {
		return "", false
	}
	_ = c.order.Each(func(key string) bool {
		if e := c.entries[key]; e != nil && !e.accessed {
			victim = key
			return false
		}
		return true
	})
	return victim, true
}

// removeEntry fires willRemove and detaches the entry from the map and the
// recency list.
func (c *MemoryCache[V]) removeEntry(key string, e *entry[V]) {
	if c.willRemove != nil {
		c.willRemove(key, e.value)
	}
	delete(c.entries, key)
	_ = c.order.RemoveAt(e.loc)
}
