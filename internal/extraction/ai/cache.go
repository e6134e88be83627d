// internal/extraction/ai/cache.go
package ai

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lender-match-workers/internal/criteria"
)

const (
	// DefaultCacheTTL bounds how long a document's extraction is reused.
	DefaultCacheTTL = 30 * time.Minute
	// memoryCacheMaxEntries caps the in-process cache; the oldest insert is
	// evicted when full.
	memoryCacheMaxEntries = 32
)

// Cache stores normalized extraction results keyed by document hash, so
// repeated parses of the same text don't re-bill or re-hit provider rate
// limits.
type Cache interface {
	Get(ctx context.Context, key string) ([]criteria.ExtractedProgram, bool)
	Put(ctx context.Context, key string, programs []criteria.ExtractedProgram)
}

type memoryEntry struct {
	insertedAt time.Time
	programs   []criteria.ExtractedProgram
}

// MemoryCache is a mutex-guarded in-process Cache with TTL expiry and
// oldest-insert eviction.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewMemoryCache builds an in-process cache. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		max:     memoryCacheMaxEntries,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]criteria.ExtractedProgram, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.programs, true
}

func (c *MemoryCache) Put(_ context.Context, key string, programs []criteria.ExtractedProgram) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.insertedAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = memoryEntry{insertedAt: c.now(), programs: programs}
}

// RedisCache is a Cache backed by redis, letting multiple worker instances
// share extraction results.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache builds a redis-backed cache. Keys are namespaced under
// "extraction:programs:".
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl, prefix: "extraction:programs:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]criteria.ExtractedProgram, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var programs []criteria.ExtractedProgram
	if err := json.Unmarshal(data, &programs); err != nil {
		return nil, false
	}
	return programs, true
}

func (c *RedisCache) Put(ctx context.Context, key string, programs []criteria.ExtractedProgram) {
	data, err := json.Marshal(programs)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+key, data, c.ttl)
}
