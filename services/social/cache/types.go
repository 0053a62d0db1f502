// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache memoizes connection path searches.
//
// Results are keyed by (start, end, max depth) and held in a ristretto
// cache. Any graph mutation must call Invalidate; entries computed before
// the call are never returned afterwards.
package cache

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultMaxEntries is the default number of cached path results.
const DefaultMaxEntries int64 = 10000

// ErrClosed is returned when a cache is used after Close.
var ErrClosed = errors.New("path cache is closed")

// PathResult is a cached search outcome. Found is false when no path
// exists within the depth bound; Path is nil in that case.
type PathResult struct {
	Path  []string
	Found bool
}

// clone returns a result whose Path does not alias r.Path.
func (r PathResult) clone() PathResult {
	if r.Path == nil {
		return r
	}
	out := make([]string, len(r.Path))
	copy(out, r.Path)
	return PathResult{Path: out, Found: r.Found}
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits          int64  `json:"hits"`
	Misses        int64  `json:"misses"`
	Invalidations int64  `json:"invalidations"`
	Generation    uint64 `json:"generation"`
}

// CacheOptions configures a PathCache.
type CacheOptions struct {
	// MaxEntries bounds the number of cached results. 0 disables caching
	// and every lookup computes.
	// Default: 10000
	MaxEntries int64
}

// DefaultCacheOptions returns the default options.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{MaxEntries: DefaultMaxEntries}
}

// CacheOption is a functional option for New.
type CacheOption func(*CacheOptions)

// WithMaxEntries sets the entry bound. Negative values are treated as 0.
func WithMaxEntries(n int64) CacheOption {
	return func(o *CacheOptions) {
		if n < 0 {
			n = 0
		}
		o.MaxEntries = n
	}
}

// pathKey encodes a lookup with length prefixes so that names containing
// the separator cannot collide.
func pathKey(gen uint64, start, end string, maxDepth int) string {
	var b strings.Builder
	b.Grow(len(start) + len(end) + 32)
	b.WriteString(strconv.FormatUint(gen, 10))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(start)))
	b.WriteByte(':')
	b.WriteString(start)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(end)))
	b.WriteByte(':')
	b.WriteString(end)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(maxDepth))
	return b.String()
}
