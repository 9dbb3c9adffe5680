// Package cache provides the time-boxed memoization of the ingestion
// pipeline. The cached aggregate is only ever replaced wholesale; a
// failed refresh leaves the previous entry intact.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pontoscli/internal/dataprocessing"
)

// Loader runs a full ingestion and returns a fresh aggregate.
type Loader func(ctx context.Context) (*dataprocessing.FolderAggregate, error)

// Entry wraps a cached aggregate with its capture time. Valid while
// now - CapturedAt < ttl.
type Entry struct {
	Aggregate  *dataprocessing.FolderAggregate
	CapturedAt time.Time
}

// AggregateCache is a read-through TTL cache over the ingestion
// pipeline. Concurrent misses within one cache epoch are collapsed into
// a single pipeline run.
type AggregateCache struct {
	mu     sync.RWMutex
	entry  *Entry
	ttl    time.Duration
	loader Loader
	group  singleflight.Group
	logger *slog.Logger

	hits   int64
	misses int64
}

// New creates a cache over the given loader.
func New(ttl time.Duration, loader Loader, logger *slog.Logger) *AggregateCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregateCache{
		ttl:    ttl,
		loader: loader,
		logger: logger.With(slog.String("component", "aggregate_cache")),
	}
}

// Get returns the cached aggregate when fresh, otherwise runs the
// pipeline and swaps the result in atomically. A refresh failure with a
// previously cached aggregate returns the stale aggregate; a failure on
// first-ever load propagates to the caller.
func (c *AggregateCache) Get(ctx context.Context) (*dataprocessing.FolderAggregate, error) {
	if entry := c.fresh(); entry != nil {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.Aggregate, nil
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()

	result, err, _ := c.group.Do("aggregate", func() (interface{}, error) {
		// Re-check under the flight: another caller may have
		// refreshed between our freshness check and joining.
		if entry := c.fresh(); entry != nil {
			return entry.Aggregate, nil
		}

		aggregate, err := c.loader(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entry = &Entry{Aggregate: aggregate, CapturedAt: time.Now()}
		c.mu.Unlock()

		return aggregate, nil
	})

	if err != nil {
		c.mu.RLock()
		stale := c.entry
		c.mu.RUnlock()
		if stale != nil {
			c.logger.WarnContext(ctx, "refresh failed, serving stale aggregate",
				slog.Time("captured_at", stale.CapturedAt),
				slog.String("error", err.Error()))
			return stale.Aggregate, nil
		}
		return nil, err
	}

	return result.(*dataprocessing.FolderAggregate), nil
}

// Invalidate clears the cache immediately regardless of age. The next
// Get triggers a full ingestion.
func (c *AggregateCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
	c.logger.Info("cache invalidated")
}

// Stats returns cache statistics.
func (c *AggregateCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := map[string]interface{}{
		"hits":        c.hits,
		"misses":      c.misses,
		"ttl_seconds": c.ttl.Seconds(),
		"cached":      c.entry != nil,
	}
	if c.entry != nil {
		stats["age_seconds"] = time.Since(c.entry.CapturedAt).Seconds()
	}
	return stats
}

// fresh returns the current entry when it is within the TTL.
func (c *AggregateCache) fresh() *Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry != nil && time.Since(c.entry.CapturedAt) < c.ttl {
		return c.entry
	}
	return nil
}
