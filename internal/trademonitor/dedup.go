package trademonitor

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// dedupTTL bounds how long a "this crossing already alerted" marker is
// remembered; a trade that re-crosses the same threshold a day later is
// treated as a fresh event rather than suppressed forever.
const dedupTTL = 24 * time.Hour

// DedupCache remembers which (trade, crossing) pairs have already fired an
// alert, surviving across PollOnce's reload of trades from Store — unlike
// RegisteredTrade.DegradedAt, which only lives for the lifetime of one
// in-memory trade value.
type DedupCache interface {
	// MarkIfAbsent records key and reports true if it was newly set (i.e.
	// the caller should alert), false if key was already present.
	MarkIfAbsent(ctx context.Context, key string) bool
}

// memoryDedupCache is the nil-Redis fallback: an unbounded in-process map
// guarded by a mutex, scoped to one running daemon.
type memoryDedupCache struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func newMemoryDedupCache() *memoryDedupCache {
	return &memoryDedupCache{seen: make(map[string]time.Time)}
}

func (c *memoryDedupCache) MarkIfAbsent(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if at, ok := c.seen[key]; ok && time.Since(at) < dedupTTL {
		return false
	}
	c.seen[key] = time.Now()
	return true
}

// RedisDedupCache backs DedupCache with a shared Redis instance via SETNX
// semantics, so dedup state survives process restarts and is shared across
// a multi-instance deployment. Falls back to an in-memory map on any Redis
// error, never blocking alert delivery on a dedup-store outage.
type RedisDedupCache struct {
	client   *redis.Client
	fallback *memoryDedupCache
}

// NewRedisDedupCache wraps client; pass nil to use NewDedupCache's
// in-memory-only behavior instead.
func NewRedisDedupCache(client *redis.Client) *RedisDedupCache {
	return &RedisDedupCache{client: client, fallback: newMemoryDedupCache()}
}

func (c *RedisDedupCache) MarkIfAbsent(ctx context.Context, key string) bool {
	if c.client == nil {
		return c.fallback.MarkIfAbsent(ctx, key)
	}
	ok, err := c.client.SetNX(ctx, "premovescan:dedup:"+key, 1, dedupTTL).Result()
	if err != nil {
		return c.fallback.MarkIfAbsent(ctx, key)
	}
	return ok
}

// NewDedupCache returns a DedupCache backed by client, or a pure in-memory
// cache if client is nil (no Redis endpoint configured).
func NewDedupCache(client *redis.Client) DedupCache {
	if client == nil {
		return newMemoryDedupCache()
	}
	return NewRedisDedupCache(client)
}
