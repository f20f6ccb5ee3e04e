package files

import (
	"sync"
	"time"
)

// ContentCache is an in-memory cache of file text keyed by URL. Entries
// remember the modification time they were read at, so a stale entry is
// treated as a miss.
type ContentCache struct {
	data map[string]cacheEntry
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

type cacheEntry struct {
	content string
	modTime time.Time
}

// NewContentCache creates a new cache.
func NewContentCache() *ContentCache {
	return &ContentCache{
		data: make(map[string]cacheEntry),
	}
}

// Get retrieves the content of url if it was read at modTime. A zero
// modTime matches any entry.
func (c *ContentCache) Get(url string, modTime time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[url]
	if ok && !modTime.IsZero() && !e.modTime.Equal(modTime) {
		ok = false
	}
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return e.content, ok
}

// Set stores the content of url.
func (c *ContentCache) Set(url string, content string, modTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[url] = cacheEntry{content: content, modTime: modTime}
}

// Delete forgets url.
func (c *ContentCache) Delete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, url)
}

// Clear clears the cache.
func (c *ContentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]cacheEntry)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached files.
func (c *ContentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Stats returns cache statistics.
func (c *ContentCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
