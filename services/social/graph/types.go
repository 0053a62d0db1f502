// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

// Edge is an undirected connection between two nodes.
//
// A and B are reported in the order the connection was first added.
// For a self-loop A == B.
type Edge[N comparable] struct {
	A N
	B N
}

// neighborSet is an insertion-ordered set of nodes.
type neighborSet[N comparable] struct {
	index map[N]struct{}
	order []N
}

func newNeighborSet[N comparable]() *neighborSet[N] {
	return &neighborSet[N]{index: make(map[N]struct{})}
}

// add inserts n and reports whether it was new.
func (s *neighborSet[N]) add(n N) bool {
	if _, ok := s.index[n]; ok {
		return false
	}
	s.index[n] = struct{}{}
	s.order = append(s.order, n)
	return true
}

func (s *neighborSet[N]) contains(n N) bool {
	_, ok := s.index[n]
	return ok
}

func (s *neighborSet[N]) len() int {
	return len(s.order)
}
