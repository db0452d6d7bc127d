// Package cache provides in-process object caches with expiration support.
//
// MemoryCache is a generic expiring key/value store. ImageMemoryCache
// specializes it into a byte-budgeted least-recently-used cache with a hard
// memory cap and a separate low-memory reduction cap. Both are
// single-threaded by design; callers needing concurrent access use Loader
// or serialize externally.
package cache
