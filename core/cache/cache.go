package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a thread-safe key-value store with optional TTL and tag-based eviction.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
	tags  map[string]map[string]struct{}
}

type item struct {
	value     interface{}
	expiresAt int64 // unix nanoseconds, 0 = never
	tags      []string
}

var (
	once     sync.Once
	instance *Cache
)

// GetInstance returns the process-wide cache.
func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

func NewCache() *Cache {
	return &Cache{
		items: make(map[string]item),
		tags:  make(map[string]map[string]struct{}),
	}
}

// Set stores value under key. ttl is in seconds, 0 means no expiration.
func (c *Cache) Set(key string, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.untagLocked(key)
	c.items[key] = item{value: value, expiresAt: expiresAt, tags: append([]string(nil), tags...)}
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if it.expiresAt > 0 && time.Now().UnixNano() > it.expiresAt {
		c.Delete(key)
		return nil, false
	}
	return it.value, true
}

func (c *Cache) GetOrDefault(key string, def interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

func (c *Cache) Delete(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.untagLocked(key)
		delete(c.items, key)
	}
}

// DeleteByTag evicts every entry carrying tag.
func (c *Cache) DeleteByTag(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := c.tags[tag]
	n := 0
	for key := range keys {
		c.untagLocked(key)
		delete(c.items, key)
		n++
	}
	delete(c.tags, tag)
	return n
}

// GetKeysByTag lists the keys carrying tag.
func (c *Cache) GetKeysByTag(tag string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.tags[tag]))
	for key := range c.tags[tag] {
		out = append(out, key)
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
	c.tags = make(map[string]map[string]struct{})
}

func (c *Cache) untagLocked(key string) {
	it, ok := c.items[key]
	if !ok {
		return
	}
	for _, tag := range it.tags {
		if keys, ok := c.tags[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, tag)
			}
		}
	}
}

// Key joins parts into a composite key.
func Key(parts ...interface{}) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(s, "|")
}
