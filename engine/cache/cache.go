package cache

import (
	"errors"
	"sync"

	"github.com/mochi2d/mochi/engine/core"
)

var ErrCacheMiss = errors.New("no entry with the given key")

// Cache is a single keyed store. Every asset kind the loader produces ends up
// in one of these, keyed by the file key it was queued under.
type Cache struct {
	name    string
	mutex   sync.RWMutex
	entries map[string]interface{}
}

func NewCache(name string) *Cache {
	return &Cache{
		name:    name,
		entries: make(map[string]interface{}),
	}
}

func (c *Cache) Name() string {
	return c.name
}

// Add inserts an entry. An existing entry under the same key is overwritten
// with a warning; the loader's duplicate-key check normally prevents this.
func (c *Cache) Add(key string, value interface{}) {
	c.mutex.Lock()
	if _, exists := c.entries[key]; exists {
		core.LogWarn("cache '%s' overwriting existing entry '%s'", c.name, key)
	}
	c.entries[key] = value
	c.mutex.Unlock()

	core.EventFire(core.EVENT_CODE_CACHE_ADD, c, core.EventContext{
		FileKey:   key,
		CacheName: c.name,
	})
}

func (c *Cache) Get(key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	v, exists := c.entries[key]
	if !exists {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *Cache) Has(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, exists := c.entries[key]
	return exists
}

// Remove deletes an entry. Removing a missing key is a no-op.
func (c *Cache) Remove(key string) {
	c.mutex.Lock()
	_, exists := c.entries[key]
	delete(c.entries, key)
	c.mutex.Unlock()

	if exists {
		core.EventFire(core.EVENT_CODE_CACHE_REMOVE, c, core.EventContext{
			FileKey:   key,
			CacheName: c.name,
		})
	}
}

func (c *Cache) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

func (c *Cache) Clear() {
	c.mutex.Lock()
	c.entries = make(map[string]interface{})
	c.mutex.Unlock()
}
