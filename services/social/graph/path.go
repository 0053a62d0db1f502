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

// DefaultMaxDepth is the path length (in nodes) explored before a search
// gives up.
const DefaultMaxDepth = 3

// PathOptions configures FindConnectionPath.
type PathOptions struct {
	// MaxDepth bounds the length, in nodes, of any path taken off the queue.
	// Default: 3
	MaxDepth int
}

// DefaultPathOptions returns the defaults used when no option is given.
func DefaultPathOptions() PathOptions {
	return PathOptions{MaxDepth: DefaultMaxDepth}
}

// PathOption is a functional option for FindConnectionPath.
type PathOption func(*PathOptions)

// WithMaxDepth sets the depth bound.
//
// Any value is accepted. A bound below 1 makes every search fail on the
// first dequeue.
func WithMaxDepth(d int) PathOption {
	return func(o *PathOptions) {
		o.MaxDepth = d
	}
}

func applyPathOptions(opts []PathOption) PathOptions {
	options := DefaultPathOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// pathItem is a queue entry: the node being expanded and the path to it.
type pathItem[N comparable] struct {
	node N
	path []N
}

// FindConnectionPath searches for a chain of friendships from start to end.
//
// Description:
//
//	Breadth-first search that carries the full path with each queue entry.
//	A node is marked visited when it is enqueued, so each node is expanded
//	at most once and the returned path has the fewest hops among the paths
//	discovered in enqueue order.
//
//	Two checks interact and are both intentional:
//
//	  - Depth abort: when a dequeued path has more than MaxDepth nodes the
//	    whole search stops and reports not found. BFS dequeues paths in
//	    non-decreasing length, so nothing shorter remains.
//	  - Discovery on expansion: each neighbor is compared with end before
//	    the visited check. A match returns path+[end] at once, so a result
//	    may hold MaxDepth+1 nodes.
//
//	start == end is not special-cased: end is only recognized as a
//	neighbor of an expanded node.
//
// Inputs:
//
//	start - Node to search from.
//	end - Node to reach.
//	opts - Path options (WithMaxDepth).
//
// Outputs:
//
//	[]N - The path including both endpoints, or nil.
//	bool - False when no path was found within the bound.
//
// Example:
//
//	path, ok := g.FindConnectionPath("Alice", "George", graph.WithMaxDepth(3))
func (g *Social[N]) FindConnectionPath(start, end N, opts ...PathOption) ([]N, bool) {
	options := applyPathOptions(opts)

	queue := []pathItem[N]{{node: start, path: []N{start}}}
	visited := map[N]struct{}{start: {}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if len(item.path) > options.MaxDepth {
			return nil, false
		}

		s, ok := g.adj[item.node]
		if !ok {
			continue
		}
		for _, neighbor := range s.order {
			if neighbor == end {
				return extendPath(item.path, end), true
			}
			if _, seen := visited[neighbor]; seen {
				continue
			}
			visited[neighbor] = struct{}{}
			queue = append(queue, pathItem[N]{
				node: neighbor,
				path: extendPath(item.path, neighbor),
			})
		}
	}

	return nil, false
}

// extendPath returns a new slice holding path followed by n.
func extendPath[N comparable](path []N, n N) []N {
	out := make([]N, len(path)+1)
	copy(out, path)
	out[len(path)] = n
	return out
}
