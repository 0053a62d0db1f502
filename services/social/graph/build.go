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

// BuildFromEdges creates a graph and adds every edge in order.
//
// Duplicate edges are ignored, as with AddConnection.
//
// Example:
//
//	g := graph.BuildFromEdges([]graph.Edge[string]{
//	    {A: "Alice", B: "Bob"},
//	    {A: "Bob", B: "Charlie"},
//	})
func BuildFromEdges[N comparable](edges []Edge[N]) *Social[N] {
	g := New[N]()
	for _, e := range edges {
		g.AddConnection(e.A, e.B)
	}
	return g
}
