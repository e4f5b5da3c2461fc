package nominatim

import (
	"container/list"
	"context"
	"sync"
)

// PlaceCache stores resolved labels by place key. A Get error is treated as
// a miss by the Resolver.
type PlaceCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, label string) error
}

// MemoryCache is a thread-safe in-process PlaceCache. With maxEntries of zero
// it is a plain map that grows without bound; otherwise it also tracks
// recency and evicts the least recently resolved place.
type MemoryCache struct {
	maxEntries int

	mu     sync.Mutex
	labels map[string]string
	recent *list.List               // of place keys, front is most recent; nil when unbounded
	index  map[string]*list.Element // place key -> node in recent
}

// NewMemoryCache creates a MemoryCache. maxEntries <= 0 means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	c := &MemoryCache{labels: make(map[string]string)}
	if maxEntries > 0 {
		c.maxEntries = maxEntries
		c.recent = list.New()
		c.index = make(map[string]*list.Element, maxEntries)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	label, ok := c.labels[key]
	if ok {
		c.touch(key)
	}
	return label, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key, label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.labels[key] = label
	c.touch(key)

	if c.recent != nil && c.recent.Len() > c.maxEntries {
		oldest := c.recent.Back()
		evicted := c.recent.Remove(oldest).(string)
		delete(c.index, evicted)
		delete(c.labels, evicted)
	}
	return nil
}

// Len returns the number of cached labels.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.labels)
}

// touch marks key as most recently used. No-op for an unbounded cache.
func (c *MemoryCache) touch(key string) {
	if c.recent == nil {
		return
	}
	if el, ok := c.index[key]; ok {
		c.recent.MoveToFront(el)
		return
	}
	c.index[key] = c.recent.PushFront(key)
}
