// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc runs the uncached search.
type ComputeFunc func() ([]string, bool)

// PathCache memoizes connection path results.
//
// Thread Safety:
//
//	Safe for concurrent use. Concurrent misses on the same key share one
//	computation.
type PathCache struct {
	store  *ristretto.Cache[string, PathResult]
	flight singleflight.Group

	// generation is folded into every key; Invalidate bumps it so that
	// results computed against an older graph are unreachable.
	generation atomic.Uint64

	hits          atomic.Int64
	misses        atomic.Int64
	invalidations atomic.Int64

	closeOnce sync.Once
	closed    atomic.Bool
}

// New creates a path cache.
//
// Inputs:
//
//	opts - Cache options (WithMaxEntries).
//
// Outputs:
//
//	*PathCache - The cache. With MaxEntries 0 it stores nothing.
//	error - Non-nil if ristretto rejects the configuration.
func New(opts ...CacheOption) (*PathCache, error) {
	options := DefaultCacheOptions()
	for _, opt := range opts {
		opt(&options)
	}

	c := &PathCache{}
	if options.MaxEntries == 0 {
		return c, nil
	}

	store, err := ristretto.NewCache(&ristretto.Config[string, PathResult]{
		NumCounters:        options.MaxEntries * 10,
		MaxCost:            options.MaxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create path cache: %w", err)
	}
	c.store = store
	return c, nil
}

// GetOrCompute returns the cached result for the lookup or runs compute
// and stores its result.
//
// Outputs:
//
//	[]string - The path, owned by the caller.
//	bool - Whether a path was found.
//	error - ErrClosed after Close.
func (c *PathCache) GetOrCompute(ctx context.Context, start, end string, maxDepth int, compute ComputeFunc) ([]string, bool, error) {
	if c.closed.Load() {
		return nil, false, ErrClosed
	}
	if c.store == nil {
		c.misses.Add(1)
		recordHit(ctx, false)
		path, ok := compute()
		return path, ok, nil
	}

	key := pathKey(c.generation.Load(), start, end, maxDepth)
	if r, ok := c.store.Get(key); ok {
		c.hits.Add(1)
		recordHit(ctx, true)
		r = r.clone()
		return r.Path, r.Found, nil
	}

	c.misses.Add(1)
	recordHit(ctx, false)

	v, _, _ := c.flight.Do(key, func() (interface{}, error) {
		path, ok := compute()
		r := PathResult{Path: path, Found: ok}
		c.store.Set(key, r, 1)
		c.store.Wait()
		return r, nil
	})
	r := v.(PathResult).clone()
	return r.Path, r.Found, nil
}

// Invalidate drops every cached result. Call it after any mutation of
// the graph the results were computed from.
func (c *PathCache) Invalidate(ctx context.Context) {
	c.generation.Add(1)
	c.invalidations.Add(1)
	recordInvalidation(ctx)
	if c.store != nil && !c.closed.Load() {
		c.store.Clear()
	}
}

// Stats returns the current counters.
func (c *PathCache) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
		Generation:    c.generation.Load(),
	}
}

// Close releases the cache's goroutines. Safe to call multiple times.
func (c *PathCache) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.store != nil {
			c.store.Close()
		}
	})
}
