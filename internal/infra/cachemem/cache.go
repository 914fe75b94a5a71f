package cachemem

import (
	"container/list"
	"context"
	"sync"

	"claimgen/internal/domain"
	"claimgen/internal/usecase"
)

const defaultMaxEntries = 512

// Cache is a bounded in-process predicate cache with LRU eviction. Entries
// never expire: published rules are immutable, so a cached tree can only be
// evicted, never invalidated.
type Cache struct {
	mu      sync.Mutex
	max     int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key  string
	node domain.PredicateNode
}

func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Cache{
		max:     maxEntries,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *Cache) Get(_ context.Context, key string) (domain.PredicateNode, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	element, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	c.order.MoveToFront(element)
	return element.Value.(*cacheEntry).node, true, nil
}

func (c *Cache) Put(_ context.Context, key string, node domain.PredicateNode) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if element, ok := c.entries[key]; ok {
		element.Value.(*cacheEntry).node = node
		c.order.MoveToFront(element)
		return nil
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, node: node})
	if c.order.Len() > c.max {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return nil
}

// Len reports the number of cached predicates.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

var _ usecase.PredicateCache = (*Cache)(nil)
