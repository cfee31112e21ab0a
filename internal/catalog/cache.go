package catalog

import (
	"fmt"
	"sync"
	"time"
)

// cacheEntry pairs a cached payload with its expiry instant.
type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// ResponseCache is a TTL key→value store used to memoize catalog lookups.
// Expired entries are removed lazily on read; there is no background sweep.
// Safe for concurrent use.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached value for key, or false on a miss.
// An expired entry is purged before the miss is reported.
func (c *ResponseCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Put stores value under key with the given TTL, overwriting any prior entry.
func (c *ResponseCache) Put(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(ttl)}
}

// Clear removes all entries.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// IdentifierCache maps a (source, schema, table) triple to the catalog's
// internal table identifier. Identifiers are treated as stable for the
// process lifetime, so entries never expire; a catalog-side rename is only
// picked up after an explicit Clear. Safe for concurrent use.
type IdentifierCache struct {
	mu  sync.Mutex
	ids map[string]int
}

func NewIdentifierCache() *IdentifierCache {
	return &IdentifierCache{ids: make(map[string]int)}
}

func identifierKey(sourceID int, schema, table string) string {
	return fmt.Sprintf("%d_%s_%s", sourceID, schema, table)
}

// Get returns the cached identifier for the triple, or false on a miss.
func (c *IdentifierCache) Get(sourceID int, schema, table string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[identifierKey(sourceID, schema, table)]
	return id, ok
}

// Put stores the identifier for the triple. Later writes for the same triple
// are idempotent overwrites.
func (c *IdentifierCache) Put(sourceID int, schema, table string, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[identifierKey(sourceID, schema, table)] = id
}

// Clear removes all entries.
func (c *IdentifierCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[string]int)
}
