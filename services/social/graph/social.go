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

// Social is an undirected, unweighted friendship graph.
//
// The zero value is not usable; create instances with New.
type Social[N comparable] struct {
	adj   map[N]*neighborSet[N]
	nodes []N
	edges []Edge[N]
}

// New creates an empty social graph.
func New[N comparable]() *Social[N] {
	return &Social[N]{
		adj: make(map[N]*neighborSet[N]),
	}
}

// AddConnection adds an undirected edge between u and v.
//
// Description:
//
//	Both endpoints are created on first use. Adding an existing
//	connection (in either orientation) has no effect. Both directions are
//	written before the call returns.
//
//	u == v is accepted as a self-loop: u becomes its own neighbor and
//	counts once toward its degree.
//
// Inputs:
//
//	u, v - Endpoints of the connection.
func (g *Social[N]) AddConnection(u, v N) {
	su := g.ensure(u)
	sv := g.ensure(v)

	added := su.add(v)
	if sv.add(u) {
		added = true
	}
	if added {
		g.edges = append(g.edges, Edge[N]{A: u, B: v})
	}
}

// ensure returns the neighbor set for n, creating the node if needed.
func (g *Social[N]) ensure(n N) *neighborSet[N] {
	s, ok := g.adj[n]
	if !ok {
		s = newNeighborSet[N]()
		g.adj[n] = s
		g.nodes = append(g.nodes, n)
	}
	return s
}

// HasConnection reports whether u and v are direct friends.
func (g *Social[N]) HasConnection(u, v N) bool {
	s, ok := g.adj[u]
	return ok && s.contains(v)
}

// HasNode reports whether n appears in any connection.
func (g *Social[N]) HasNode(n N) bool {
	_, ok := g.adj[n]
	return ok
}

// Neighbors returns the direct friends of u in insertion order.
//
// Unknown nodes have no friends; the result is then empty, never nil.
// The returned slice is a copy and may be modified by the caller.
func (g *Social[N]) Neighbors(u N) []N {
	s, ok := g.adj[u]
	if !ok {
		return []N{}
	}
	out := make([]N, len(s.order))
	copy(out, s.order)
	return out
}

// FriendCount returns the degree of u, or 0 if u is unknown.
func (g *Social[N]) FriendCount(u N) int {
	s, ok := g.adj[u]
	if !ok {
		return 0
	}
	return s.len()
}

// MutualFriends returns the nodes adjacent to both u and v.
//
// Description:
//
//	Intersects the two neighbor sets. As a set the result is the same for
//	(u, v) and (v, u); the slice order follows u's neighbor order.
//	Returns an empty slice when either node is unknown.
func (g *Social[N]) MutualFriends(u, v N) []N {
	su, okU := g.adj[u]
	sv, okV := g.adj[v]
	if !okU || !okV {
		return []N{}
	}

	out := make([]N, 0)
	for _, n := range su.order {
		if sv.contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// FriendsOfFriends returns the nodes exactly two hops from u.
//
// Description:
//
//	Takes the union of the neighbors of every friend of u, then removes u
//	itself and every direct friend of u. The result has no duplicates and
//	is ordered by first discovery. Empty if u has no friends.
func (g *Social[N]) FriendsOfFriends(u N) []N {
	friends, ok := g.adj[u]
	if !ok {
		return []N{}
	}

	seen := make(map[N]struct{})
	out := make([]N, 0)
	for _, f := range friends.order {
		for _, ff := range g.adj[f].order {
			if ff == u || friends.contains(ff) {
				continue
			}
			if _, dup := seen[ff]; dup {
				continue
			}
			seen[ff] = struct{}{}
			out = append(out, ff)
		}
	}
	return out
}

// Nodes returns every node in order of first appearance.
func (g *Social[N]) Nodes() []N {
	out := make([]N, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns every undirected edge once, in insertion order.
func (g *Social[N]) Edges() []Edge[N] {
	out := make([]Edge[N], len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of nodes.
func (g *Social[N]) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Social[N]) EdgeCount() int {
	return len(g.edges)
}
