// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the undirected social graph and its relationship
// queries.
//
// The graph stores people (or accounts) as opaque comparable identifiers and
// friendships as unordered, unweighted edges. Nodes have no separate registry:
// a node exists once it appears in an edge.
//
// # Queries
//
//   - Neighbors / FriendCount: direct friends and degree
//   - MutualFriends: intersection of two neighbor sets
//   - FriendsOfFriends: nodes exactly two hops away that are not friends
//   - FindConnectionPath: bounded-depth breadth-first path discovery
//
// Every query is total over unknown nodes: it returns an empty slice, zero or
// "not found" rather than an error.
//
// # Ordering
//
// Neighbor sets remember insertion order. Query results and BFS tie-breaking
// therefore depend only on the order in which connections were added.
//
// # Thread Safety
//
// Social is NOT safe for concurrent use. Callers that share a graph between
// goroutines must guard every call (reads included) with their own lock; see
// services/social/api for the served wrapper.
//
// # Lifecycle
//
//  1. Create with New() or BuildFromEdges()
//  2. Add connections with AddConnection()
//  3. Query
package graph
