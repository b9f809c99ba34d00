// Package cache holds computed recommendations keyed by a fingerprint of the decision
// input. Entries expire lazily: an expired entry is dropped the next time it is read or
// when Sweep runs. An optional Redis tier shares results between processes.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/oncology-cds-engine/internal/domain"
)

// DefaultTTL is the lifetime of a cached recommendation.
const DefaultTTL = 5 * time.Minute

// DefaultMaxEntries bounds the in-memory tier.
const DefaultMaxEntries = 1024

// Options configures a ResultCache.
type Options struct {
	TTL        time.Duration
	MaxEntries int
	// Clock returns the current time; time.Now when nil.
	Clock func() time.Time
	// Remote is an optional shared tier consulted on memory misses.
	Remote RemoteTier
}

// RemoteTier is a shared cache tier such as Redis.
type RemoteTier interface {
	Get(ctx context.Context, key string) (*domain.DecisionOutput, bool)
	Set(ctx context.Context, key string, output *domain.DecisionOutput, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context) error
}

type entry struct {
	output    *domain.DecisionOutput
	expiresAt time.Time
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	RemoteHits int64 `json:"remote_hits"`
	Entries    int   `json:"entries"`
}

// ResultCache maps input fingerprints to previously computed outputs.
type ResultCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	now     func() time.Time
	remote  RemoteTier
	group   singleflight.Group
	stats   Stats
	logger  *logrus.Logger
}

// NewResultCache creates a result cache.
func NewResultCache(logger *logrus.Logger, opts Options) (*ResultCache, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	c := &ResultCache{
		ttl:    opts.TTL,
		now:    opts.Clock,
		remote: opts.Remote,
		logger: logger,
	}

	entries, err := lru.NewWithEvict[string, entry](opts.MaxEntries, func(string, entry) {
		c.stats.Evictions++
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	c.entries = entries

	return c, nil
}

// TTL returns the entry lifetime.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached output for key. An expired entry counts as a miss and is
// evicted.
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.DecisionOutput, bool) {
	return c.lookup(ctx, key, true)
}

// lookup holds c.mu only around memory-tier access. The remote tier is called unlocked.
func (c *ResultCache) lookup(ctx context.Context, key string, count bool) (*domain.DecisionOutput, bool) {
	c.mu.Lock()
	if out, ok := c.memoryGet(key); ok {
		if count {
			c.stats.Hits++
		}
		c.mu.Unlock()
		return out, true
	}
	if c.remote == nil {
		if count {
			c.stats.Misses++
		}
		c.mu.Unlock()
		return nil, false
	}
	c.mu.Unlock()

	out, ok := c.remote.Get(ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		if count {
			c.stats.Misses++
		}
		return nil, false
	}
	c.entries.Add(key, entry{output: out, expiresAt: c.now().Add(c.ttl)})
	if count {
		c.stats.Hits++
		c.stats.RemoteHits++
	}
	return out, true
}

// memoryGet must be called with c.mu held.
func (c *ResultCache) memoryGet(key string) (*domain.DecisionOutput, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().Before(e.expiresAt) {
		return e.output, true
	}
	c.entries.Remove(key)
	return nil, false
}

// Put stores output under key, replacing any previous entry.
func (c *ResultCache) Put(ctx context.Context, key string, output *domain.DecisionOutput) {
	c.mu.Lock()
	c.entries.Add(key, entry{output: output, expiresAt: c.now().Add(c.ttl)})
	c.mu.Unlock()

	if c.remote != nil {
		c.remote.Set(ctx, key, output, c.ttl)
	}
}

// GetOrCompute returns the cached output for key or runs compute and stores its result.
// Concurrent callers for the same key share a single computation. Failed computations
// are not cached.
func (c *ResultCache) GetOrCompute(ctx context.Context, key string, compute func() (*domain.DecisionOutput, error)) (*domain.DecisionOutput, bool, error) {
	if out, ok := c.Get(ctx, key); ok {
		return out, true, nil
	}

	hit := false
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		out, ok := c.lookup(ctx, key, false)
		if ok {
			hit = true
			return out, nil
		}

		out, err := compute()
		if err != nil {
			return nil, err
		}
		c.Put(ctx, key, out)
		return out, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*domain.DecisionOutput), hit, nil
}

// Sweep evicts every expired entry and returns how many were removed.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, key := range c.entries.Keys() {
		e, ok := c.entries.Peek(key)
		if ok && !now.Before(e.expiresAt) {
			c.entries.Remove(key)
			removed++
		}
	}

	if removed > 0 && c.logger != nil {
		c.logger.WithField("removed", removed).Debug("Swept expired recommendations")
	}
	return removed
}

// Invalidate drops key from every tier.
func (c *ResultCache) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	c.entries.Remove(key)
	c.mu.Unlock()

	if c.remote != nil {
		c.remote.Delete(ctx, key)
	}
}

// Clear drops every entry from the memory tier and the remote tier. Statistics are
// kept.
func (c *ResultCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	evictions := c.stats.Evictions
	c.entries.Purge()
	c.stats.Evictions = evictions
	c.mu.Unlock()

	if c.remote == nil {
		return nil
	}
	if err := c.remote.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear remote cache tier: %w", err)
	}
	return nil
}

// Len returns the number of in-memory entries, expired ones included.
func (c *ResultCache) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of the cache statistics.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = c.entries.Len()
	return s
}

// HitRatio returns hits / (hits + misses).
func (c *ResultCache) HitRatio() float64 {
	s := c.Stats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
