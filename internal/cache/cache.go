// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache is the tiered evidence cache: a static curated set, a
// persistent TTL store, and on-demand generation guarded by a singleflight
// lock per key. The cache is the pipeline's only shared mutable resource.
package cache

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/singleflight"

	"github.com/suplementia/evidence-engine/pkg/types"
)

//go:embed curated.yaml
var curatedYAML []byte

// Source identifies which tier served a result.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceCurated   Source = "curated"
	SourceStore     Source = "store"
)

// Generator produces a fresh ranking for a key on a cache miss.
type Generator func(ctx context.Context) (types.RankingResult, error)

// Cache front-ends the three tiers. Store failures degrade to Tier-3
// regeneration and are logged, never returned to the caller.
type Cache struct {
	curated map[string]types.RankingResult
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
}

// New builds a Cache over the given store. store may be nil, which leaves
// only the curated and generation tiers active.
func New(store Store, cfg types.CacheConfig, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}

	curated, err := loadCurated()
	if err != nil {
		return nil, err
	}

	return &Cache{curated: curated, store: store, ttl: ttl, logger: logger}, nil
}

func loadCurated() (map[string]types.RankingResult, error) {
	curated := map[string]types.RankingResult{}
	if err := yaml.Unmarshal(curatedYAML, &curated); err != nil {
		return nil, fmt.Errorf("parsing curated evidence set: %w", err)
	}
	return curated, nil
}

// Curated returns the static Tier-1 set, keyed by normalized name.
func (c *Cache) Curated() map[string]types.RankingResult {
	return c.curated
}

// GetOrGenerate returns the ranking for key, trying tiers in order. With
// forceRefresh the curated and store reads are skipped and the result is
// regenerated. Concurrent callers for the same missing key share a single
// in-flight generation.
func (c *Cache) GetOrGenerate(ctx context.Context, key string, forceRefresh bool, gen Generator) (types.RankingResult, Source, error) {
	if !forceRefresh {
		if result, ok := c.curated[key]; ok {
			return result, SourceCurated, nil
		}
		if entry := c.read(ctx, key); entry != nil && !entry.Expired(time.Now()) {
			c.touchAsync(key)
			return entry.Result, SourceStore, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the lock: a concurrent caller may have finished
		// generating while this one waited.
		if !forceRefresh {
			if entry := c.read(ctx, key); entry != nil && !entry.Expired(time.Now()) {
				return entry.Result, nil
			}
		}

		result, err := gen(ctx)
		if err != nil {
			return types.RankingResult{}, err
		}
		c.write(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return types.RankingResult{}, SourceGenerated, err
	}
	return v.(types.RankingResult), SourceGenerated, nil
}

// Invalidate expires the stored entry so the next read regenerates.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if c.store == nil {
		return nil
	}
	return c.store.Invalidate(ctx, key)
}

// Warm writes every curated entry into the persistent tier.
func (c *Cache) Warm(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, nil
	}
	written := 0
	for key, result := range c.curated {
		if err := c.store.Put(ctx, key, result, c.ttl); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (c *Cache) read(ctx context.Context, key string) *types.CacheEntry {
	if c.store == nil {
		return nil
	}
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, regenerating", "key", key, "error", err)
		return nil
	}
	return entry
}

func (c *Cache) write(ctx context.Context, key string, result types.RankingResult) {
	if c.store == nil {
		return
	}
	if err := c.store.Put(ctx, key, result, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// touchAsync increments the access counter off the critical path.
func (c *Cache) touchAsync(key string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.store.Touch(ctx, key); err != nil {
			c.logger.Debug("access count update failed", "key", key, "error", err)
		}
	}()
}
