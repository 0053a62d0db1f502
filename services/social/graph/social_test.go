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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleEdges is the demo friendship network:
//
//	Alice - Bob, Charlie, David
//	Bob - Charlie, Eve, Frank
//	Charlie - David, Eve
//	David - Frank
//	Eve - George
//	Frank - George
//	George - Harry
var exampleEdges = []Edge[string]{
	{"Alice", "Bob"}, {"Alice", "Charlie"}, {"Alice", "David"},
	{"Bob", "Charlie"}, {"Bob", "Eve"}, {"Bob", "Frank"},
	{"Charlie", "David"}, {"Charlie", "Eve"},
	{"David", "Frank"}, {"Eve", "George"},
	{"Frank", "George"}, {"George", "Harry"},
}

func buildExample(t *testing.T) *Social[string] {
	t.Helper()
	g := BuildFromEdges(exampleEdges)
	require.Equal(t, 8, g.NodeCount())
	require.Equal(t, len(exampleEdges), g.EdgeCount())
	return g
}

func TestNew_Empty(t *testing.T) {
	g := New[string]()

	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
}

func TestAddConnection_Symmetric(t *testing.T) {
	g := buildExample(t)

	for _, e := range exampleEdges {
		assert.Contains(t, g.Neighbors(e.A), e.B, "%s should list %s", e.A, e.B)
		assert.Contains(t, g.Neighbors(e.B), e.A, "%s should list %s", e.B, e.A)
		assert.True(t, g.HasConnection(e.A, e.B))
		assert.True(t, g.HasConnection(e.B, e.A))
	}

	for _, u := range g.Nodes() {
		for _, v := range g.Neighbors(u) {
			assert.Contains(t, g.Neighbors(v), u, "edge %s-%s is not symmetric", u, v)
		}
	}
}

func TestAddConnection_Idempotent(t *testing.T) {
	g := New[string]()
	g.AddConnection("a", "b")

	beforeA := g.Neighbors("a")
	beforeB := g.Neighbors("b")

	g.AddConnection("a", "b")
	g.AddConnection("b", "a")

	assert.Equal(t, beforeA, g.Neighbors("a"))
	assert.Equal(t, beforeB, g.Neighbors("b"))
	assert.Equal(t, 1, g.EdgeCount(), "reversed duplicate must not add an edge")
	assert.Equal(t, 2, g.NodeCount())
}

func TestAddConnection_SelfLoop(t *testing.T) {
	g := New[string]()
	g.AddConnection("solo", "solo")

	assert.Equal(t, []string{"solo"}, g.Neighbors("solo"))
	assert.Equal(t, 1, g.FriendCount("solo"))
	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, []Edge[string]{{"solo", "solo"}}, g.Edges())
	assert.Empty(t, g.FriendsOfFriends("solo"))
}

func TestNeighbors_Unknown(t *testing.T) {
	g := buildExample(t)

	n := g.Neighbors("Zed")
	assert.NotNil(t, n)
	assert.Empty(t, n)
	assert.False(t, g.HasNode("Zed"))
}

func TestNeighbors_InsertionOrder(t *testing.T) {
	g := buildExample(t)

	assert.Equal(t, []string{"Alice", "Charlie", "Eve", "Frank"}, g.Neighbors("Bob"))
}

func TestNeighbors_ReturnsCopy(t *testing.T) {
	g := buildExample(t)

	n := g.Neighbors("Alice")
	n[0] = "Mallory"

	assert.Equal(t, []string{"Bob", "Charlie", "David"}, g.Neighbors("Alice"))
}

func TestFriendCount(t *testing.T) {
	g := buildExample(t)

	tests := []struct {
		user string
		want int
	}{
		{"Bob", 4},
		{"George", 3},
		{"Harry", 1},
		{"Alice", 3},
		{"Nobody", 0},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			assert.Equal(t, tt.want, g.FriendCount(tt.user))
		})
	}
}

func TestFriendCount_MatchesNeighbors(t *testing.T) {
	g := buildExample(t)

	for _, u := range append(g.Nodes(), "Nobody") {
		assert.Equal(t, len(g.Neighbors(u)), g.FriendCount(u), "degree mismatch for %s", u)
	}
}

func TestMutualFriends(t *testing.T) {
	g := buildExample(t)

	t.Run("shared friend", func(t *testing.T) {
		assert.Equal(t, []string{"Charlie"}, g.MutualFriends("Alice", "Bob"))
	})

	t.Run("no shared friend", func(t *testing.T) {
		assert.Empty(t, g.MutualFriends("Alice", "George"))
	})

	t.Run("unknown node", func(t *testing.T) {
		assert.Empty(t, g.MutualFriends("Alice", "Nobody"))
		assert.Empty(t, g.MutualFriends("Nobody", "Alice"))
	})

	t.Run("multiple shared friends", func(t *testing.T) {
		assert.Equal(t, []string{"Alice", "Charlie", "Frank"}, g.MutualFriends("Bob", "David"))
	})
}

func TestMutualFriends_Commutative(t *testing.T) {
	g := buildExample(t)
	nodes := append(g.Nodes(), "Nobody")

	for _, u := range nodes {
		for _, v := range nodes {
			assert.ElementsMatch(t, g.MutualFriends(u, v), g.MutualFriends(v, u), "mutual(%s,%s)", u, v)
		}
	}
}

func TestFriendsOfFriends(t *testing.T) {
	g := buildExample(t)

	t.Run("alice", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Eve", "Frank"}, g.FriendsOfFriends("Alice"))
	})

	t.Run("harry", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Eve", "Frank"}, g.FriendsOfFriends("Harry"))
	})

	t.Run("unknown", func(t *testing.T) {
		fof := g.FriendsOfFriends("Nobody")
		assert.NotNil(t, fof)
		assert.Empty(t, fof)
	})
}

func TestFriendsOfFriends_Exclusion(t *testing.T) {
	g := buildExample(t)

	for _, u := range g.Nodes() {
		fof := g.FriendsOfFriends(u)
		assert.NotContains(t, fof, u, "fof(%s) contains itself", u)
		for _, f := range g.Neighbors(u) {
			assert.NotContains(t, fof, f, "fof(%s) contains direct friend %s", u, f)
		}

		seen := make(map[string]bool)
		for _, n := range fof {
			assert.False(t, seen[n], "fof(%s) lists %s twice", u, n)
			seen[n] = true
		}
	}
}

func TestNodesAndEdges_Snapshot(t *testing.T) {
	g := buildExample(t)

	assert.Equal(t,
		[]string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank", "George", "Harry"},
		g.Nodes())
	assert.Equal(t, exampleEdges, g.Edges())

	edges := g.Edges()
	edges[0] = Edge[string]{"x", "y"}
	assert.Equal(t, exampleEdges[0], g.Edges()[0], "Edges must return a copy")
}

func TestSocial_IntIdentifiers(t *testing.T) {
	g := BuildFromEdges([]Edge[int]{{1, 2}, {2, 3}, {3, 4}})

	assert.Equal(t, []int{3}, g.FriendsOfFriends(1))
	assert.Equal(t, []int{2}, g.MutualFriends(1, 3))

	path, ok := g.FindConnectionPath(1, 4)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4}, path)
}
