package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrTypeMismatch is returned when a key is already bound to a store of a
// different value type
var ErrTypeMismatch = errors.New("store type mismatch")

type closer interface {
	Close()
}

// Cache holds one Store per key for the lifetime of a view. It is created
// when the view mounts and closed when it unmounts.
type Cache struct {
	mu     sync.Mutex
	stores map[string]closer
	closed bool
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{stores: make(map[string]closer)}
}

// Get returns the store bound to key, creating it with fetch on first use.
// fetch is ignored when the store already exists.
func Get[T any](c *Cache, key string, fetch FetchFunc[T]) (*Store[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	if existing, ok := c.stores[key]; ok {
		s, ok := existing.(*Store[T])
		if !ok {
			return nil, fmt.Errorf("%w: key %s holds %T", ErrTypeMismatch, key, existing)
		}
		return s, nil
	}

	s := New(key, fetch)
	c.stores[key] = s
	return s, nil
}

// Keys returns the bound keys in sorted order
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.stores))
	for k := range c.stores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close closes every store and rejects further Get calls
func (c *Cache) Close() {
	c.mu.Lock()
	stores := c.stores
	c.stores = make(map[string]closer)
	c.closed = true
	c.mu.Unlock()

	for _, s := range stores {
		s.Close()
	}
}
