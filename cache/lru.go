package cache

import "time"

// EvictFunc is called when an entry leaves an ImageMemoryCache through
// capacity eviction, expiration, or explicit removal.
type EvictFunc[V any] func(key string, value V, sizeBytes uint64)

// SizeFunc computes the byte cost of a value when one is not supplied at
// store time.
type SizeFunc[V any] func(value V) uint64

// ImageMemoryCache is a MemoryCache with a per-entry byte cost and a
// least-recently-used memory cap. It keeps a running total of stored bytes
// and evicts from the LRU end of the recency list whenever a store pushes
// the total over MaxTotalMemoryUsage.
//
// The most-recently stored entry is never evicted by its own insertion,
// even when its size alone exceeds the cap.
//
// Extension is wired through the base cache's willReplace/willRemove
// callbacks, which keep the byte accounting exact across overwrites.
type ImageMemoryCache[V any] struct {
	base *MemoryCache[V]

	totalBytes uint64

	// maxTotal is the hard cap enforced on every store. Zero means
	// unbounded.
	maxTotal uint64

	// maxLowTotal is the reduced cap enforced only by ReduceMemoryUsage.
	// Zero means no capacity-based reduction.
	maxLowTotal uint64

	sizer     SizeFunc[V]
	onEvicted EvictFunc[V]
}

// ImageOption configures an ImageMemoryCache.
type ImageOption[V any] func(*ImageMemoryCache[V])

// WithMaxTotalMemoryUsage sets the hard memory cap in bytes. Zero (the
// default) means unbounded.
func WithMaxTotalMemoryUsage[V any](n uint64) ImageOption[V] {
	return func(c *ImageMemoryCache[V]) {
		c.maxTotal = n
	}
}

// WithMaxTotalLowMemoryUsage sets the cap applied by ReduceMemoryUsage.
// Zero (the default) disables capacity-based reduction.
func WithMaxTotalLowMemoryUsage[V any](n uint64) ImageOption[V] {
	return func(c *ImageMemoryCache[V]) {
		c.maxLowTotal = n
	}
}

// WithSizer installs a function used to cost values stored through Store
// and StoreWithExpiry. Without one, those paths store at zero cost and
// only StoreSized entries count toward the total.
func WithSizer[V any](fn SizeFunc[V]) ImageOption[V] {
	return func(c *ImageMemoryCache[V]) {
		c.sizer = fn
	}
}

// WithOnEvicted installs a callback fired whenever an entry leaves the
// cache outside of RemoveAll.
func WithOnEvicted[V any](fn EvictFunc[V]) ImageOption[V] {
	return func(c *ImageMemoryCache[V]) {
		c.onEvicted = fn
	}
}

// NewImage creates an empty ImageMemoryCache.
func NewImage[V any](opts ...ImageOption[V]) *ImageMemoryCache[V] {
	c := &ImageMemoryCache[V]{
		base: New[V](),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.base.willReplace = c.noteReplace
	c.base.willRemove = c.noteRemove
	return c
}

// StoreSized inserts or overwrites the entry for key at the given byte
// cost, with no expiration, then enforces the memory cap.
func (c *ImageMemoryCache[V]) StoreSized(key string, value V, sizeBytes uint64) error {
	return c.storeSized(key, value, sizeBytes, time.Time{})
}

// StoreSizedWithExpiry is StoreSized with an expiration instant. An
// already-past instant removes any existing entry and stores nothing.
func (c *ImageMemoryCache[V]) StoreSizedWithExpiry(key string, value V, sizeBytes uint64, expiresAt time.Time) error {
	return c.storeSized(key, value, sizeBytes, expiresAt)
}

// Store inserts or overwrites using the configured sizer to compute the
// byte cost. Without a sizer the entry is stored at zero cost.
func (c *ImageMemoryCache[V]) Store(key string, value V) error {
	return c.storeSized(key, value, c.cost(value), time.Time{})
}

// StoreWithExpiry is Store with an expiration instant.
func (c *ImageMemoryCache[V]) StoreWithExpiry(key string, value V, expiresAt time.Time) error {
	return c.storeSized(key, value, c.cost(value), expiresAt)
}

func (c *ImageMemoryCache[V]) storeSized(key string, value V, sizeBytes uint64, expiresAt time.Time) error {
	if err := c.base.store(key, value, expiresAt); err != nil {
		return err
	}

	e, ok := c.base.entries[key]
	if !ok {
		// Already-past expiration: nothing was stored.
		return nil
	}
	// On an overwrite, noteReplace already subtracted the outgoing size.
	e.size = sizeBytes
	c.totalBytes += sizeBytes

	// Evict from the LRU end until the total fits. The just-stored entry
	// sits at the MRU end and is exempt from its own insertion: the loop
	// stops once it is the only entry left.
	for c.maxTotal != 0 && c.totalBytes > c.maxTotal && c.base.Count() > 1 {
		if !c.evictLRU() {
			break
		}
	}
	return nil
}

// Fetch retrieves the value stored for key. A hit counts as a use and
// moves the entry to the most-recently-used end of the recency list.
func (c *ImageMemoryCache[V]) Fetch(key string) (V, bool) {
	v, ok := c.base.Fetch(key)
	if ok {
		c.base.touch(key)
	}
	return v, ok
}

// Contains reports whether an unexpired entry exists for key without
// counting as a use.
func (c *ImageMemoryCache[V]) Contains(key string) bool {
	return c.base.Contains(key)
}

// Remove evicts the named entry if present.
func (c *ImageMemoryCache[V]) Remove(key string) {
	c.base.Remove(key)
}

// RemoveAll evicts every entry and resets the byte total. This is a bulk
// clear: per-entry callbacks do not fire.
func (c *ImageMemoryCache[V]) RemoveAll() {
	c.base.RemoveAll()
	c.totalBytes = 0
}

// ReduceMemoryUsage sweeps expired entries, then evicts least-recently-used
// entries regardless of expiration until the total fits under
// MaxTotalLowMemoryUsage. With a zero low cap only the expired sweep runs.
func (c *ImageMemoryCache[V]) ReduceMemoryUsage() {
	c.base.ReduceMemoryUsage()
	if c.maxLowTotal == 0 {
		return
	}
	for c.totalBytes > c.maxLowTotal {
		if !c.evictLRU() {
			return
		}
	}
}

// Count returns the number of currently-stored entries.
func (c *ImageMemoryCache[V]) Count() int {
	return c.base.Count()
}

// TotalMemoryUsage returns the sum of the byte costs of all live entries.
func (c *ImageMemoryCache[V]) TotalMemoryUsage() uint64 {
	return c.totalBytes
}

// MaxTotalMemoryUsage returns the hard memory cap. Zero means unbounded.
func (c *ImageMemoryCache[V]) MaxTotalMemoryUsage() uint64 {
	return c.maxTotal
}

// SetMaxTotalMemoryUsage changes the hard memory cap. The new cap applies
// on the next store; it does not trigger immediate eviction.
func (c *ImageMemoryCache[V]) SetMaxTotalMemoryUsage(n uint64) {
	c.maxTotal = n
}

// MaxTotalLowMemoryUsage returns the low-memory reduction cap.
func (c *ImageMemoryCache[V]) MaxTotalLowMemoryUsage() uint64 {
	return c.maxLowTotal
}

// SetMaxTotalLowMemoryUsage changes the low-memory reduction cap.
func (c *ImageMemoryCache[V]) SetMaxTotalLowMemoryUsage(n uint64) {
	c.maxLowTotal = n
}

// evictLRU removes the entry at the least-recently-used end. Entries with
// identical recency leave in insertion order, which the append-ordered
// recency list gives for free.
func (c *ImageMemoryCache[V]) evictLRU() bool {
	key, ok := c.base.leastRecentlyUsedKey()
	if !ok {
		return false
	}
	c.base.Remove(key)
	return true
}

func (c *ImageMemoryCache[V]) cost(value V) uint64 {
	if c.sizer == nil {
		return 0
	}
	return c.sizer(value)
}

// noteReplace keeps the byte total exact across overwrites: the outgoing
// entry's cost is subtracted here and the incoming cost is added by the
// store path, so a replace is never double-counted.
func (c *ImageMemoryCache[V]) noteReplace(key string, _, _ V) {
	if e, ok := c.base.entries[key]; ok {
		c.totalBytes -= e.size
		e.size = 0
	}
}

// noteRemove settles accounting for any removal: explicit, expiration
// sweep, or capacity eviction.
func (c *ImageMemoryCache[V]) noteRemove(key string, value V) {
	e, ok := c.base.entries[key]
	if !ok {
		return
	}
	c.totalBytes -= e.size
	if c.onEvicted != nil {
		c.onEvicted(key, value, e.size)
	}
}
