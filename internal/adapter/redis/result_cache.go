package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

const (
	LayerMemory = "memory"
	LayerRedis  = "redis"
)

// CacheRecorder is notified of cache lookups.
type CacheRecorder interface {
	CacheHit(layer string)
	CacheMiss()
}

// ResultCache memoizes reports in process (L1) and optionally in Redis (L2).
// Concurrent misses for one key share a single computation. Producer errors
// are never stored.
type ResultCache struct {
	rdb      goredis.Cmdable
	mem      *memoryCache
	group    singleflight.Group
	clock    clockwork.Clock
	recorder CacheRecorder
}

var _ domain.ResultCache = (*ResultCache)(nil)

type CacheOption func(*ResultCache)

// WithRedis enables the Redis layer.
func WithRedis(rdb goredis.Cmdable) CacheOption {
	return func(c *ResultCache) { c.rdb = rdb }
}

func WithRecorder(r CacheRecorder) CacheOption {
	return func(c *ResultCache) { c.recorder = r }
}

func NewResultCache(clock clockwork.Clock, opts ...CacheOption) *ResultCache {
	c := &ResultCache{
		mem:   newMemoryCache(clock),
		clock: clock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartEvictionTimer runs a periodic goroutine that evicts expired in-memory entries.
// Returns a stop function that should be deferred.
func (c *ResultCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if evicted := c.mem.evictExpired(); evicted > 0 {
					slog.Debug("Evicted expired report cache entries", "count", evicted, "remaining", c.mem.size())
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

// GetOrCompute returns the cached report for key or runs produce and caches its
// result for ttl. The boolean is false only for the caller whose produce ran.
// Returned reports are shared and must not be modified.
func (c *ResultCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, produce domain.ReportProducer) (*domain.Report, bool, error) {
	if ttl <= 0 {
		report, err := produce(ctx)
		return report, false, err
	}

	// Layer 1: in-memory cache
	if report, ok := c.mem.get(key); ok {
		c.hit(LayerMemory)
		return report, true, nil
	}

	computed := false
	v, err, _ := c.group.Do(key, func() (any, error) {
		if report, ok := c.mem.get(key); ok {
			c.hit(LayerMemory)
			return report, nil
		}

		// Layer 2: Redis cache
		if report, expiresAt, ok := c.getCached(ctx, key); ok {
			c.hit(LayerRedis)
			c.mem.set(key, report, expiresAt)
			return report, nil
		}

		c.miss()
		report, err := produce(ctx)
		if err != nil {
			return nil, err
		}
		computed = true

		expiresAt := c.clock.Now().Add(ttl)
		c.mem.set(key, report, expiresAt)
		c.writeCache(ctx, key, report, expiresAt, ttl)
		return report, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*domain.Report), !computed, nil
}

// Invalidate drops key from both layers.
func (c *ResultCache) Invalidate(ctx context.Context, key string) error {
	c.mem.invalidate(key)
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, reportCacheKey(key)).Err()
}

type cachedReport struct {
	Report    *domain.Report `json:"report"`
	ExpiresAt time.Time      `json:"expires_at"`
}

func (c *ResultCache) writeCache(ctx context.Context, key string, report *domain.Report, expiresAt time.Time, ttl time.Duration) {
	if c.rdb == nil {
		return
	}

	encoded, err := json.Marshal(cachedReport{Report: report, ExpiresAt: expiresAt})
	if err != nil {
		slog.Warn("Failed to marshal report for Redis cache", "key", key, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, reportCacheKey(key), encoded, ttl).Err(); err != nil {
		slog.Warn("Failed to populate Redis report cache", "key", key, "error", err)
	}
}

func (c *ResultCache) getCached(ctx context.Context, key string) (*domain.Report, time.Time, bool) {
	if c.rdb == nil {
		return nil, time.Time{}, false
	}

	data, err := c.rdb.Get(ctx, reportCacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("Redis report cache GET failed", "key", key, "error", err)
		}
		return nil, time.Time{}, false
	}

	var cached cachedReport
	if err := json.Unmarshal(data, &cached); err != nil || cached.Report == nil {
		slog.Warn("Failed to unmarshal cached report", "key", key, "error", err)
		return nil, time.Time{}, false
	}
	if !c.clock.Now().Before(cached.ExpiresAt) {
		return nil, time.Time{}, false
	}
	return cached.Report, cached.ExpiresAt, true
}

func (c *ResultCache) hit(layer string) {
	if c.recorder != nil {
		c.recorder.CacheHit(layer)
	}
}

func (c *ResultCache) miss() {
	if c.recorder != nil {
		c.recorder.CacheMiss()
	}
}

func reportCacheKey(key string) string {
	return "report_cache:" + key
}

// memoryCache is an in-memory L1 cache with absolute expiry times.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
	clock   clockwork.Clock
}

type memoryCacheEntry struct {
	report    *domain.Report
	expiresAt time.Time
}

func newMemoryCache(clock clockwork.Clock) *memoryCache {
	return &memoryCache{
		entries: make(map[string]memoryCacheEntry),
		clock:   clock,
	}
}

func (c *memoryCache) get(key string) (*domain.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.report, true
}

func (c *memoryCache) set(key string, report *domain.Report, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryCacheEntry{report: report, expiresAt: expiresAt}
}

func (c *memoryCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *memoryCache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}
