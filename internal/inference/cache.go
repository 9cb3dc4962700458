package inference

import (
	"fmt"
	"sync"
	"time"

	"github.com/oskarw/kassa/internal/lexicon"
	"github.com/oskarw/kassa/internal/model"
)

// cacheEntry represents a cached classification suggestion.
type cacheEntry struct {
	expiry     time.Time
	suggestion model.Suggestion
}

// suggestionCache provides thread-safe TTL caching for adapter suggestions,
// so repeated merchant strings never pay for a second slow-path call.
type suggestionCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newSuggestionCache creates a new cache with the specified TTL.
func newSuggestionCache(ttl time.Duration) *suggestionCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &suggestionCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// cacheKey derives the cache key from the normalized description and a
// coarse amount bucket (nearest ten), so near-identical amounts for the same
// merchant share an entry.
func cacheKey(description string, amount float64) string {
	bucket := int64(amount/10 + 0.5)
	if amount < 0 {
		bucket = int64(amount/10 - 0.5)
	}
	return fmt.Sprintf("%s:%d", lexicon.Normalize(description), bucket*10)
}

// get retrieves a suggestion if it exists and has not expired.
func (c *suggestionCache) get(key string) (model.Suggestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return model.Suggestion{}, false
	}

	if time.Now().After(entry.expiry) {
		return model.Suggestion{}, false
	}

	return entry.suggestion, true
}

// set stores a suggestion. Last writer wins on concurrent updates.
func (c *suggestionCache) set(key string, suggestion model.Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		suggestion: suggestion,
		expiry:     time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *suggestionCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// clear removes all entries from the cache.
func (c *suggestionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// size returns the number of entries in the cache.
func (c *suggestionCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *suggestionCache) Close() {
	close(c.stopCh)
}
