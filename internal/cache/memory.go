package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client en memoria sobre go-cache.
// Útil para desarrollo y testing. El mutex garantiza que GetDel
// sea atómico, igual que GETDEL en Redis.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewMemory crea un cliente en memoria.
func NewMemory(prefix string) *memoryClient {
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (c *memoryClient) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *memoryClient) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.c.Get(c.key(key))
	if !ok {
		c.misses++
		return "", ErrNotFound
	}
	c.hits++
	return v.(string), nil
}

func (c *memoryClient) GetDel(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(key)
	v, ok := c.c.Get(k)
	if !ok {
		c.misses++
		return "", ErrNotFound
	}
	c.c.Delete(k)
	c.hits++
	return v.(string), nil
}

func (c *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		c.c.Set(c.key(key), value, gocache.NoExpiration)
		return nil
	}
	c.c.Set(c.key(key), value, ttl)
	return nil
}

func (c *memoryClient) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.Delete(c.key(key))
	return nil
}

func (c *memoryClient) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.c.Get(c.key(key))
	return ok, nil
}

func (c *memoryClient) Ping(ctx context.Context) error {
	return nil
}

func (c *memoryClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.Flush()
	return nil
}

func (c *memoryClient) Stats(ctx context.Context) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Driver: "memory",
		Keys:   int64(c.c.ItemCount()),
		Hits:   c.hits,
		Misses: c.misses,
	}, nil
}
