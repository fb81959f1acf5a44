package permission

import (
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheTTL bounds how stale a cached permission lookup may be in
// processes that missed an invalidation (horizontally scaled deployments).
const DefaultCacheTTL = 5 * time.Minute

const defaultCacheSize = 4096

// Cache stores short-lived permission lookups keyed per user. The Engine
// owns the lifecycle: it populates on read and clears on write. Injected so
// tests can substitute a deterministic or no-op implementation.
type Cache interface {
	Get(key string) ([]string, bool)
	Set(key string, values []string)
	InvalidateUser(userID int64)
	InvalidateAll()
}

// lookup kinds cached per user.
const (
	kindRoles = "roles"
	kindTools = "tools"
)

func cacheKey(kind string, userID int64) string {
	return kind + ":" + strconv.FormatInt(userID, 10)
}

// TTLCache is the production Cache: a size-bounded LRU whose entries expire
// after ttl.
type TTLCache struct {
	lru *expirable.LRU[string, []string]
}

// NewTTLCache builds a TTLCache. Non-positive ttl falls back to the default.
func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TTLCache{lru: expirable.NewLRU[string, []string](defaultCacheSize, nil, ttl)}
}

func (c *TTLCache) Get(key string) ([]string, bool) { return c.lru.Get(key) }

func (c *TTLCache) Set(key string, values []string) { c.lru.Add(key, values) }

func (c *TTLCache) InvalidateUser(userID int64) {
	c.lru.Remove(cacheKey(kindRoles, userID))
	c.lru.Remove(cacheKey(kindTools, userID))
}

func (c *TTLCache) InvalidateAll() { c.lru.Purge() }

// NopCache disables caching; every lookup hits the store.
type NopCache struct{}

func (NopCache) Get(string) ([]string, bool) { return nil, false }
func (NopCache) Set(string, []string)        {}
func (NopCache) InvalidateUser(int64)        {}
func (NopCache) InvalidateAll()              {}
