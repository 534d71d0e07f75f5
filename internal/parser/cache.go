package parser

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/samsaffron/chatblocks/internal/blocks"
)

// DefaultCacheCapacity bounds the parse cache when no capacity is given.
const DefaultCacheCapacity = 100

// cacheKeyPrefixLen is how much of the raw input participates in the cache
// key. Truncating keeps key construction O(1) on huge inputs; two long
// inputs sharing a prefix, length and format can therefore collide. That is
// an accepted tradeoff of this cache, not a correctness guarantee — callers
// needing exact change detection should compare Metadata.ContentHash.
const cacheKeyPrefixLen = 64

// cacheKey builds the lookup key from a raw-input prefix, the total length,
// and the format the content was parsed as.
func cacheKey(raw string, format blocks.Format) string {
	prefix := raw
	if len(prefix) > cacheKeyPrefixLen {
		prefix = prefix[:cacheKeyPrefixLen]
	}
	return fmt.Sprintf("%s:%d:%s", prefix, len(raw), format)
}

// resultCache is an LRU cache of parse results. It keeps repeated parses of
// identical content cheap while bounding memory.
type resultCache struct {
	mu      sync.Mutex
	maxSize int
	cache   map[string]*list.Element
	lruList *list.List
}

// cacheEntry holds a cache key-value pair for the LRU list.
type cacheEntry struct {
	key    string
	result *blocks.ParseResult
}

// newResultCache creates a cache with the given maximum size.
func newResultCache(maxSize int) *resultCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheCapacity
	}
	return &resultCache{
		maxSize: maxSize,
		cache:   make(map[string]*list.Element),
		lruList: list.New(),
	}
}

// get retrieves a result, returning nil on a miss. A hit moves the entry to
// the front of the LRU list, which is a mutation; all access goes through
// the mutex.
func (c *resultCache) get(key string) *blocks.ParseResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		return elem.Value.(*cacheEntry).result
	}
	return nil
}

// put stores a result, evicting the least recently used entry at capacity.
func (c *resultCache) put(key string, result *blocks.ParseResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*cacheEntry).result = result
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictOldest()
	}

	elem := c.lruList.PushFront(&cacheEntry{key: key, result: result})
	c.cache[key] = elem
}

// evictOldest removes the least recently used entry.
// Must be called with the lock held.
func (c *resultCache) evictOldest() {
	oldest := c.lruList.Back()
	if oldest != nil {
		entry := oldest.Value.(*cacheEntry)
		delete(c.cache, entry.key)
		c.lruList.Remove(oldest)
	}
}

// len returns the current number of cached results.
func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// clear removes all entries.
func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.lruList.Init()
}
