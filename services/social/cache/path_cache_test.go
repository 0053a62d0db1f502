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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(path []string, found bool, calls *atomic.Int32) ComputeFunc {
	return func() ([]string, bool) {
		calls.Add(1)
		if path == nil {
			return nil, found
		}
		out := make([]string, len(path))
		copy(out, path)
		return out, found
	}
}

func TestPathKey_NoCollisions(t *testing.T) {
	assert.NotEqual(t, pathKey(0, "a|b", "c", 3), pathKey(0, "a", "b|c", 3))
	assert.NotEqual(t, pathKey(0, "a", "b", 3), pathKey(0, "a", "b", 4))
	assert.NotEqual(t, pathKey(0, "a", "b", 3), pathKey(1, "a", "b", 3))
	assert.NotEqual(t, pathKey(0, "a", "b", 3), pathKey(0, "b", "a", 3))
}

func TestPathCache_HitAfterMiss(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	var calls atomic.Int32
	compute := counting([]string{"Alice", "Bob"}, true, &calls)

	path, ok, err := c.GetOrCompute(ctx, "Alice", "Bob", 3, compute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Alice", "Bob"}, path)

	path, ok, err = c.GetOrCompute(ctx, "Alice", "Bob", 3, compute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Alice", "Bob"}, path)

	assert.Equal(t, int32(1), calls.Load())
	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestPathCache_CachesNotFound(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	var calls atomic.Int32
	compute := counting(nil, false, &calls)

	for i := 0; i < 3; i++ {
		path, ok, err := c.GetOrCompute(context.Background(), "Alice", "Harry", 3, compute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, path)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestPathCache_DepthIsPartOfKey(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	var calls atomic.Int32

	_, ok, _ := c.GetOrCompute(ctx, "Alice", "Harry", 3, counting(nil, false, &calls))
	assert.False(t, ok)

	path, ok, _ := c.GetOrCompute(ctx, "Alice", "Harry", 4,
		counting([]string{"Alice", "Bob", "Eve", "George", "Harry"}, true, &calls))
	assert.True(t, ok)
	assert.Len(t, path, 5)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPathCache_ReturnsCopies(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	var calls atomic.Int32
	compute := counting([]string{"a", "b"}, true, &calls)

	path, _, _ := c.GetOrCompute(ctx, "a", "b", 3, compute)
	path[0] = "mutated"

	path, _, _ = c.GetOrCompute(ctx, "a", "b", 3, compute)
	assert.Equal(t, []string{"a", "b"}, path)
}

func TestPathCache_Invalidate(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	var calls atomic.Int32

	_, ok, _ := c.GetOrCompute(ctx, "a", "c", 3, counting(nil, false, &calls))
	assert.False(t, ok)

	c.Invalidate(ctx)

	path, ok, _ := c.GetOrCompute(ctx, "a", "c", 3, counting([]string{"a", "b", "c"}, true, &calls))
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, path)
	assert.Equal(t, int32(2), calls.Load())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Invalidations)
	assert.Equal(t, uint64(1), stats.Generation)
}

func TestPathCache_Disabled(t *testing.T) {
	c, err := New(WithMaxEntries(0))
	require.NoError(t, err)
	defer c.Close()

	var calls atomic.Int32
	compute := counting([]string{"a", "b"}, true, &calls)
	for i := 0; i < 3; i++ {
		_, ok, err := c.GetOrCompute(context.Background(), "a", "b", 3, compute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(0), c.Stats().Hits)
}

func TestPathCache_NegativeMaxEntriesDisables(t *testing.T) {
	c, err := New(WithMaxEntries(-5))
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, c.store)
}

func TestPathCache_Closed(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	c.Close()
	c.Close()

	_, _, err = c.GetOrCompute(context.Background(), "a", "b", 3, func() ([]string, bool) {
		t.Fatal("compute must not run after Close")
		return nil, false
	})
	assert.ErrorIs(t, err, ErrClosed)

	c.Invalidate(context.Background())
}

func TestPathCache_Concurrent(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	var calls atomic.Int32
	compute := counting([]string{"a", "b"}, true, &calls)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, ok, err := c.GetOrCompute(ctx, "a", "b", 3, compute)
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []string{"a", "b"}, path)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}
