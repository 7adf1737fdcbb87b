package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultTTL             = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// Cache is a concurrency-safe key/value store.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Flush()
	Len() int
}

// Config describes a store.
type Config struct {
	Policy          Policy
	TTL             time.Duration
	CleanupInterval time.Duration
	// Size bounds the entry count of the size policy.
	Size int
}

// DefaultConfig returns a TTL store with the default expiration.
func DefaultConfig() Config {
	return Config{
		Policy:          PolicyTTL,
		TTL:             DefaultTTL,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Validate reports configurations New would reject.
func (c Config) Validate() error {
	switch c.Policy {
	case PolicyNone:
		return nil
	case PolicyTTL:
		if c.TTL <= 0 {
			return errors.New("ttl cache policy requires a positive ttl")
		}

		return nil
	case PolicySize:
		if c.Size <= 0 {
			return errors.New("size cache policy requires a positive size")
		}

		if c.TTL < 0 {
			return errors.New("cache ttl must not be negative")
		}

		return nil
	default:
		return fmt.Errorf("unknown cache policy %s", c.Policy)
	}
}

// New creates a store for cfg.
func New(cfg Config) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Policy {
	case PolicyTTL:
		cleanup := cfg.CleanupInterval
		if cleanup <= 0 {
			cleanup = DefaultCleanupInterval
		}

		return &ttlCache{cache: gocache.New(cfg.TTL, cleanup)}, nil

	case PolicySize:
		if cfg.TTL > 0 {
			return &expirableCache{lru: expirable.NewLRU[string, any](cfg.Size, nil, cfg.TTL)}, nil
		}

		l, err := lru.New[string, any](cfg.Size)
		if err != nil {
			return nil, fmt.Errorf("create lru cache: %w", err)
		}

		return &lruCache{lru: l}, nil

	default:
		return &mapCache{data: make(map[string]any)}, nil
	}
}

type mapCache struct {
	mu   sync.RWMutex
	data map[string]any
}

func (c *mapCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.data[key]

	return v, ok
}

func (c *mapCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
}

func (c *mapCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}

func (c *mapCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.data)
}

func (c *mapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

type ttlCache struct {
	cache *gocache.Cache
}

func (c *ttlCache) Get(key string) (any, bool) { return c.cache.Get(key) }

func (c *ttlCache) Set(key string, value any) { c.cache.Set(key, value, gocache.DefaultExpiration) }

func (c *ttlCache) Delete(key string) { c.cache.Delete(key) }

func (c *ttlCache) Flush() { c.cache.Flush() }

func (c *ttlCache) Len() int { return c.cache.ItemCount() }

type lruCache struct {
	lru *lru.Cache[string, any]
}

func (c *lruCache) Get(key string) (any, bool) { return c.lru.Get(key) }

func (c *lruCache) Set(key string, value any) { c.lru.Add(key, value) }

func (c *lruCache) Delete(key string) { c.lru.Remove(key) }

func (c *lruCache) Flush() { c.lru.Purge() }

func (c *lruCache) Len() int { return c.lru.Len() }

type expirableCache struct {
	lru *expirable.LRU[string, any]
}

func (c *expirableCache) Get(key string) (any, bool) { return c.lru.Get(key) }

func (c *expirableCache) Set(key string, value any) { c.lru.Add(key, value) }

func (c *expirableCache) Delete(key string) { c.lru.Remove(key) }

func (c *expirableCache) Flush() { c.lru.Purge() }

func (c *expirableCache) Len() int { return c.lru.Len() }
