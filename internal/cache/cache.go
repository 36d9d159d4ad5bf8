// Package cache is a small TTL byte cache used to soften the rate-limited
// market-data upstream (search and coin-detail responses). Reports are
// never cached. An in-memory map is the default; a Redis backend is picked
// up automatically when REDIS_ADDR is set.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte, ttl time.Duration)
}

type memory struct {
	mu sync.Mutex
	m  map[string]entry
}

type entry struct {
	b   []byte
	exp time.Time
}

// New returns the in-memory backend.
func New() Cache { return &memory{m: make(map[string]entry)} }

// NewAuto returns a Redis-backed cache when REDIS_ADDR is set, else memory.
func NewAuto() Cache {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		log.Info().Str("addr", addr).Msg("using redis cache backend")
		return &redisCache{r: redis.NewClient(&redis.Options{Addr: addr})}
	}
	return New()
}

func (c *memory) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		delete(c.m, key)
		return nil, false
	}
	return e.b, true
}

func (c *memory) Set(key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{b: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	c.m[key] = e
}

type redisCache struct{ r *redis.Client }

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	v, err := r.r.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (r *redisCache) Set(key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = r.r.Set(ctx, key, val, ttl).Err()
}

// GetJSON reads a cached value into out, reporting whether it was present
// and decodable.
func GetJSON(c Cache, key string, out interface{}) bool {
	b, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

// SetJSON stores a JSON-encoded value; encoding failures are dropped since
// the cache is best-effort.
func SetJSON(c Cache, key string, val interface{}, ttl time.Duration) {
	b, err := json.Marshal(val)
	if err != nil {
		return
	}
	c.Set(key, b, ttl)
}
