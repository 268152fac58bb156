package bytesource

import (
	"fmt"
	"sync"

	"github.com/alphadose/haxmap"
)

// SegmentCache caches compressed gzip segments read from a remote source, keyed
// content-addressably by (url, access-point index, size). It combines a
// concurrent map (haxmap) with a bounded FIFO eviction list, so lookups stay
// lock-free while the cache itself is bounded in size.
type SegmentCache struct {
	segments *haxmap.Map[string, []byte]
	order    chan string
	mu       sync.Mutex

	// locks enforces the single-writer, many-reader discipline per access-point
	// id: concurrent reads for the same key block on the first fetch rather than
	// issuing duplicate remote reads.
	locks *haxmap.Map[string, *sync.Mutex]
}

// NewSegmentCache builds a cache of roughly size segments: a store that finds
// more than size+5 segments held first evicts the oldest down to size, so at
// most size+6 are held between stores.
func NewSegmentCache(size int) *SegmentCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &SegmentCache{
		segments: haxmap.New[string, []byte](),
		order:    make(chan string, size+10),
		locks:    haxmap.New[string, *sync.Mutex](),
	}
}

// Key builds the content-addressed cache key for one access point.
func Key(url string, accessPointIndex int, size int64) string {
	return fmt.Sprintf("%s#%d#%d", url, accessPointIndex, size)
}

func (c *SegmentCache) keyLock(key string) *sync.Mutex {
	lock, _ := c.locks.GetOrSet(key, &sync.Mutex{})
	return lock
}

// Fetch returns the cached segment for key, or calls fetch to populate it. Only
// one fetch runs per key even under concurrent callers.
func (c *SegmentCache) Fetch(key string, fetch func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.segments.Get(key); ok {
		return data, nil
	}
	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if data, ok := c.segments.Get(key); ok {
		return data, nil
	}
	data, err := fetch()
	if err != nil {
		return nil, err
	}
	c.store(key, data)
	return data, nil
}

func (c *SegmentCache) store(key string, data []byte) {
	c.segments.Set(key, data)

	if cap(c.order)-len(c.order) < 5 {
		c.mu.Lock()
		for cap(c.order)-len(c.order) < 10 {
			oldest := <-c.order
			c.segments.Del(oldest)
		}
		c.mu.Unlock()
	}
	c.order <- key
}
