// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package visualization renders social graph snapshots as Mermaid, DOT, or
// D3 JSON, optionally highlighting a connection path.
//
// Rendering is read-only: a Snapshot is built from a graph once and the
// graph is never touched again, so rendering failures cannot affect query
// results.
package visualization

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianSocial/services/social/graph"
	"github.com/AleutianAI/AleutianSocial/services/social/probabilistic"
)

// OutputFormat specifies the visualization output format.
type OutputFormat string

const (
	FormatMermaid OutputFormat = "mermaid"
	FormatDOT     OutputFormat = "dot"
	FormatD3      OutputFormat = "d3"
)

// ParseFormat maps a user-supplied name to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatMermaid, FormatDOT, FormatD3:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

var (
	ErrNilContext        = errors.New("context is required")
	ErrNilSnapshot       = errors.New("snapshot is required")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Edge is an undirected edge between two rendered nodes.
type Edge struct {
	From  string
	To    string
	Label string
}

// Snapshot is the node set, edge set, and optional highlighted path to
// render.
type Snapshot struct {
	Nodes     []string
	Edges     []Edge
	Highlight []string
}

// FromSocial captures every node and edge of g. path, if non-empty, is
// highlighted.
func FromSocial[N comparable](g *graph.Social[N], path []N) *Snapshot {
	s := &Snapshot{
		Nodes:     make([]string, 0, g.NodeCount()),
		Edges:     make([]Edge, 0, g.EdgeCount()),
		Highlight: make([]string, 0, len(path)),
	}
	for _, n := range g.Nodes() {
		s.Nodes = append(s.Nodes, fmt.Sprint(n))
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, Edge{From: fmt.Sprint(e.A), To: fmt.Sprint(e.B)})
	}
	for _, n := range path {
		s.Highlight = append(s.Highlight, fmt.Sprint(n))
	}
	return s
}

// FromLinks captures every probabilistic link of l, labeling each edge
// with its probability.
func FromLinks[N comparable](l *probabilistic.Links[N]) *Snapshot {
	s := &Snapshot{Edges: make([]Edge, 0, l.Len())}
	seen := make(map[string]bool)
	addNode := func(n string) {
		if !seen[n] {
			seen[n] = true
			s.Nodes = append(s.Nodes, n)
		}
	}
	for _, p := range l.Pairs() {
		a, b := fmt.Sprint(p.A), fmt.Sprint(p.B)
		addNode(a)
		addNode(b)
		s.Edges = append(s.Edges, Edge{From: a, To: b, Label: fmt.Sprintf("%.2f", p.Probability)})
	}
	return s
}

// highlightSets returns the highlighted nodes and the highlighted edges
// keyed in both orientations.
func (s *Snapshot) highlightSets() (map[string]bool, map[[2]string]bool) {
	nodes := make(map[string]bool, len(s.Highlight))
	edges := make(map[[2]string]bool)
	for i, n := range s.Highlight {
		nodes[n] = true
		if i > 0 {
			prev := s.Highlight[i-1]
			edges[[2]string{prev, n}] = true
			edges[[2]string{n, prev}] = true
		}
	}
	return nodes, edges
}
