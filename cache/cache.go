// Package cache provides the transpiler's per-execution-context LRU:
// a lock-free cache meant to be owned by a single goroutine, so no
// caller ever pays for synchronization on the hot path. Goroutine-local
// ownership stands in for the reference design's thread-local cache,
// one instance per owner rather than one shared instance behind a mutex.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/simplelru"
)

// Key identifies one cached transpilation: the source text, a stable
// fingerprint of the options that could affect its output, and the
// target dialect (spec §4.6).
type Key struct {
	Input       string
	Fingerprint string
	Dialect     string
}

// Entry is a cached transpile outcome: either the produced SQL, or a
// structured error recorded so a repeated failing input doesn't re-run
// the lexer and parser.
type Entry struct {
	SQL     string
	IsError bool
	ErrCode string
	ErrMsg  string
}

// Cache is a fixed-capacity LRU over (Key, Entry). It is not safe for
// concurrent use; callers that need per-thread caching should construct
// one Cache per goroutine.
type Cache struct {
	lru       *lru.LRU[Key, Entry]
	hits      int
	misses    int
	evictions int
}

// New creates a Cache holding at most capacity entries.
func New(capacity int) (*Cache, error) {
	c := &Cache{}
	l, err := lru.NewLRU[Key, Entry](capacity, func(Key, Entry) {
		c.evictions++
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Get looks up key, recording a hit or miss.
func (c *Cache) Get(key Key) (Entry, bool) {
	entry, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return entry, ok
}

// Put inserts or refreshes the entry for key.
func (c *Cache) Put(key Key, entry Entry) {
	c.lru.Add(key, entry)
}

// Clear empties the cache without resetting its hit/miss counters.
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Stats is a snapshot of the cache's hit/miss/eviction counters.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits, Misses: c.misses, Evictions: c.evictions}
}

// IsEffective reports whether the cache's hit rate clears threshold,
// but only once at least minSamples lookups have been observed; below
// that, the sample is too small to judge (spec §4.6).
func (c *Cache) IsEffective(minSamples int, threshold float64) bool {
	total := c.hits + c.misses
	if total < minSamples {
		return false
	}
	return float64(c.hits)/float64(total) >= threshold
}
