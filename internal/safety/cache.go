// Package safety screens content against application-scoped forbidden-word
// lists. The word store sits behind a read-mostly cache with explicit
// per-scope invalidation.
package safety

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a scope's word list is served from cache.
const DefaultTTL = 5 * time.Minute

// Cache stores word lists per application scope. Implementations must
// tolerate concurrent reads racing a write that invalidates a scope key.
type Cache interface {
	Get(scope string) ([]string, bool)
	Set(scope string, words []string)
	Invalidate(scope string)
}

// Clock supplies the current time; tests inject a deterministic one.
type Clock func() time.Time

type memoryEntry struct {
	words   []string
	expires time.Time
}

// MemoryCache is an in-process TTL cache keyed by scope.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     Clock
}

// NewMemoryCache constructs a MemoryCache. A nil clock uses wall time.
func NewMemoryCache(ttl time.Duration, now Clock) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached word list for the scope if it has not expired.
func (c *MemoryCache) Get(scope string) ([]string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[scope]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.words, true
}

// Set stores the word list for the scope with a fresh TTL.
func (c *MemoryCache) Set(scope string, words []string) {
	c.mu.Lock()
	c.entries[scope] = memoryEntry{words: words, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the scope's entry.
func (c *MemoryCache) Invalidate(scope string) {
	c.mu.Lock()
	delete(c.entries, scope)
	c.mu.Unlock()
}

// RedisCache is a Redis-backed scope cache shared across processes.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache constructs a RedisCache.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "safety:words:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the cached word list; any Redis error is treated as a miss.
func (c *RedisCache) Get(scope string) ([]string, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(context.Background(), c.prefix+scope).Bytes()
	if err != nil {
		return nil, false
	}
	var words []string
	if json.Unmarshal(raw, &words) != nil {
		return nil, false
	}
	return words, true
}

// Set stores the word list with the configured TTL. Errors are dropped; the
// cache is an optimization, not a source of truth.
func (c *RedisCache) Set(scope string, words []string) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(words)
	if err != nil {
		return
	}
	_ = c.client.Set(context.Background(), c.prefix+scope, raw, c.ttl).Err()
}

// Invalidate drops the scope's key.
func (c *RedisCache) Invalidate(scope string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(context.Background(), c.prefix+scope).Err()
}
