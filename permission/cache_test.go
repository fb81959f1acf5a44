package permission

import (
	"testing"
	"time"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := NewTTLCache(time.Minute)
	if _, ok := c.Get(cacheKey(kindRoles, 1)); ok {
		t.Fatal("empty cache must miss")
	}
	c.Set(cacheKey(kindRoles, 1), []string{"staff"})
	v, ok := c.Get(cacheKey(kindRoles, 1))
	if !ok || len(v) != 1 || v[0] != "staff" {
		t.Fatalf("Get = (%v,%v)", v, ok)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache(20 * time.Millisecond)
	c.Set(cacheKey(kindTools, 1), []string{"chat"})
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get(cacheKey(kindTools, 1)); ok {
		t.Fatal("entry must expire after TTL")
	}
}

func TestTTLCacheInvalidateUser(t *testing.T) {
	c := NewTTLCache(time.Minute)
	c.Set(cacheKey(kindRoles, 1), []string{"staff"})
	c.Set(cacheKey(kindTools, 1), []string{"chat"})
	c.Set(cacheKey(kindRoles, 2), []string{"student"})

	c.InvalidateUser(1)
	if _, ok := c.Get(cacheKey(kindRoles, 1)); ok {
		t.Fatal("user 1 roles must be dropped")
	}
	if _, ok := c.Get(cacheKey(kindTools, 1)); ok {
		t.Fatal("user 1 tools must be dropped")
	}
	if _, ok := c.Get(cacheKey(kindRoles, 2)); !ok {
		t.Fatal("user 2 entry must survive")
	}

	c.InvalidateAll()
	if _, ok := c.Get(cacheKey(kindRoles, 2)); ok {
		t.Fatal("InvalidateAll must purge everything")
	}
}
