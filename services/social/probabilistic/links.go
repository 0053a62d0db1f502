// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package probabilistic

import (
	"fmt"
	"math"
)

// Link is one undirected probabilistic link.
//
// A and B keep the orientation of the first AddEdge call for the pair.
type Link[N comparable] struct {
	A           N
	B           N
	Probability float64
}

// Options configures a Links value.
type Options struct {
	// Source provides samples for AreConnected.
	// Default: time-seeded PCG generator
	Source Source
}

// Option is a functional option for New.
type Option func(*Options)

// WithSource injects the random source used by AreConnected.
//
// A nil source is ignored.
func WithSource(s Source) Option {
	return func(o *Options) {
		if s != nil {
			o.Source = s
		}
	}
}

// Links is an undirected map from node pairs to connection probabilities.
//
// The zero value is not usable; create instances with New.
type Links[N comparable] struct {
	probs  map[N]map[N]float64
	order  []Link[N]
	index  map[[2]N]int
	source Source
}

// New creates an empty link graph.
//
// Example:
//
//	l := probabilistic.New[string](probabilistic.WithSource(src))
func New[N comparable](opts ...Option) *Links[N] {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Source == nil {
		options.Source = defaultSource()
	}
	return &Links[N]{
		probs:  make(map[N]map[N]float64),
		index:  make(map[[2]N]int),
		source: options.Source,
	}
}

// AddEdge stores p for the pair {u, v} in both directions.
//
// Description:
//
//	Re-adding a pair overwrites its probability (last write wins). Both
//	nodes are created on first use.
//
// Outputs:
//
//	error - ErrInvalidProbability for NaN or p outside [0, 1]. Nothing is
//	        stored in that case.
func (l *Links[N]) AddEdge(u, v N, p float64) error {
	if err := ValidateProbability(p); err != nil {
		return fmt.Errorf("link %v-%v: %w", u, v, err)
	}

	l.set(u, v, p)
	l.set(v, u, p)

	if i, ok := l.index[[2]N{u, v}]; ok {
		l.order[i].Probability = p
		return nil
	}
	if i, ok := l.index[[2]N{v, u}]; ok {
		l.order[i].Probability = p
		return nil
	}
	l.index[[2]N{u, v}] = len(l.order)
	l.order = append(l.order, Link[N]{A: u, B: v, Probability: p})
	return nil
}

// ValidateProbability returns ErrInvalidProbability for NaN or p outside
// [0, 1].
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w (got %v)", ErrInvalidProbability, p)
	}
	return nil
}

func (l *Links[N]) set(u, v N, p float64) {
	row, ok := l.probs[u]
	if !ok {
		row = make(map[N]float64)
		l.probs[u] = row
	}
	row[v] = p
}

// Probability returns the stored probability for {u, v}, or 0 when the
// pair has no link.
func (l *Links[N]) Probability(u, v N) float64 {
	return l.probs[u][v]
}

// AreConnected draws one sample r from the source and reports r < p.
//
// A sample is drawn even for unknown pairs, so the source advances by
// exactly one value per call. p = 0 is never connected; p = 1 always is.
func (l *Links[N]) AreConnected(u, v N) bool {
	p := l.Probability(u, v)
	r := l.source.Float64()
	return r < p
}

// Pairs returns every link once, in order of first insertion.
func (l *Links[N]) Pairs() []Link[N] {
	out := make([]Link[N], len(l.order))
	copy(out, l.order)
	return out
}

// Len returns the number of undirected links.
func (l *Links[N]) Len() int {
	return len(l.order)
}
