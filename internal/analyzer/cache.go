package analyzer

import (
	"sync"
	"time"

	"github.com/pursewatch-dev/pursewatch/internal/model"
)

// DefaultCacheTTL bounds how often a domain is re-scored during a session.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	storedAt time.Time
	result   model.AnalysisResult
}

// Cache is an in-memory per-domain memo of the last analysis result. Expiry
// is checked lazily on read; there is no background sweep.
type Cache struct {
	now     func() time.Time
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.Mutex
}

// NewCache creates an analysis cache with the given time-to-live.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for the domain if it is still within the
// cache window. Stale entries are evicted on read.
func (c *Cache) Get(domain string) (model.AnalysisResult, bool) {
	if domain == "" {
		return model.AnalysisResult{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[domain]
	if !ok {
		return model.AnalysisResult{}, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, domain)
		return model.AnalysisResult{}, false
	}
	return entry.result, true
}

// Put stores a result for the domain, replacing any previous entry.
func (c *Cache) Put(domain string, result model.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[domain] = cacheEntry{result: result, storedAt: c.now()}
}

// Invalidate removes the domain's entry if present.
func (c *Cache) Invalidate(domain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, domain)
}

// Len returns the number of live entries, counting stale ones not yet
// evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
