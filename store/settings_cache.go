package store

import (
	"context"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

const settingsCacheTTL = 5 * time.Minute

// SettingsCache is a Valkey-backed shared cache for system settings, so all
// pods see a settings write within one invalidation rather than a TTL.
// A nil *SettingsCache is a disabled cache; every method is nil-safe.
type SettingsCache struct {
	client valkey.Client
	prefix string
}

// NewSettingsCache connects to Valkey. addr example: "127.0.0.1:6379".
func NewSettingsCache(addr, prefix string) (*SettingsCache, error) {
	cli, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "aistudio:settings:"
	}
	return &SettingsCache{client: cli, prefix: prefix}, nil
}

func (c *SettingsCache) key(k string) string { return c.prefix + k }

// Get returns the cached value and whether it was present. Cache failures
// read as misses; the caller falls through to the database.
func (c *SettingsCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build()).ToString()
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores the value with the cache TTL. Best effort.
func (c *SettingsCache) Set(ctx context.Context, key, value string) {
	if c == nil {
		return
	}
	_ = c.client.Do(ctx, c.client.B().Set().Key(c.key(key)).Value(value).Ex(settingsCacheTTL).Build()).Error()
}

// Invalidate drops the key. Called synchronously after every settings write.
func (c *SettingsCache) Invalidate(ctx context.Context, key string) {
	if c == nil {
		return
	}
	_ = c.client.Do(ctx, c.client.B().Del().Key(c.key(key)).Build()).Error()
}

// Close releases the client.
func (c *SettingsCache) Close() {
	if c != nil {
		c.client.Close()
	}
}
