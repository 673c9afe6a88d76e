package image

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// CacheStats reports hit/miss counts for observability.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	SizeBytes int64
}

// cacheEntry is stored in the LRU list.
type cacheEntry struct {
	src       string
	decoded   *Decoded
	sizeBytes int64
}

// Cache is a thread-safe LRU cache of decoded images keyed by source.
// It uses container/list for O(1) eviction and promotion.
type Cache struct {
	mu        sync.Mutex
	items     map[string]*list.Element
	order     *list.List // front = most recent, back = least recent
	maxBytes  int64
	usedBytes int64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCache creates a new LRU cache with the given maximum size in megabytes.
// If maxMB is <= 0, a default of 64 MB is used.
func NewCache(maxMB int) *Cache {
	if maxMB <= 0 {
		maxMB = 64
	}
	return newCacheBytes(int64(maxMB) * 1024 * 1024)
}

func newCacheBytes(maxBytes int64) *Cache {
	return &Cache{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		maxBytes: maxBytes,
	}
}

// Get retrieves a decoded image and promotes it to most recently used.
func (c *Cache) Get(src string) (*Decoded, bool) {
	c.mu.Lock()
	elem, ok := c.items[src]
	if ok {
		c.order.MoveToFront(elem)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return elem.Value.(*cacheEntry).decoded, true
}

// Put stores a decoded image. If the cache exceeds its maximum size, the
// least recently used entries are evicted.
func (c *Cache) Put(src string, d *Decoded) {
	entrySize := decodedSize(d)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[src]; ok {
		old := elem.Value.(*cacheEntry)
		c.usedBytes -= old.sizeBytes
		old.decoded = d
		old.sizeBytes = entrySize
		c.usedBytes += entrySize
		c.order.MoveToFront(elem)
		c.evictLocked()
		return
	}

	// Evict until there is room (or cache is empty).
	for c.usedBytes+entrySize > c.maxBytes && c.order.Len() > 0 {
		c.evictBackLocked()
	}

	elem := c.order.PushFront(&cacheEntry{src: src, decoded: d, sizeBytes: entrySize})
	c.items[src] = elem
	c.usedBytes += entrySize
}

// Invalidate clears all cache entries.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.usedBytes = 0
}

// Stats returns current cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.order.Len(),
		SizeBytes: c.usedBytes,
	}
}

// evictLocked evicts entries from the back until under maxBytes.
// Caller must hold c.mu.
func (c *Cache) evictLocked() {
	for c.usedBytes > c.maxBytes && c.order.Len() > 0 {
		c.evictBackLocked()
	}
}

// evictBackLocked removes the least recently used entry.
// Caller must hold c.mu.
func (c *Cache) evictBackLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	entry := c.order.Remove(back).(*cacheEntry)
	delete(c.items, entry.src)
	c.usedBytes -= entry.sizeBytes
	c.evictions.Add(1)
}

// decodedSize estimates the memory held by d: four bytes per pixel of
// the stored image plus the href string.
func decodedSize(d *Decoded) int64 {
	if d == nil {
		return 0
	}
	var n int64
	if d.Image != nil {
		b := d.Image.Bounds()
		n = int64(b.Dx()) * int64(b.Dy()) * 4
	}
	return n + int64(len(d.Href))
}
