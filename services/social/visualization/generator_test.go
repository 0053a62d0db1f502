// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianSocial/services/social/graph"
	"github.com/AleutianAI/AleutianSocial/services/social/probabilistic"
)

func triangle() *graph.Social[string] {
	return graph.BuildFromEdges([]graph.Edge[string]{
		{A: "Alice", B: "Bob"},
		{A: "Bob", B: "Charlie"},
		{A: "Charlie", B: "Alice"},
	})
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"mermaid", "dot", "d3"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, OutputFormat(name), f)
	}

	_, err := ParseFormat("svg")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFromSocial(t *testing.T) {
	snap := FromSocial(triangle(), []string{"Alice", "Bob"})

	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, snap.Nodes)
	assert.Len(t, snap.Edges, 3)
	assert.Equal(t, Edge{From: "Charlie", To: "Alice"}, snap.Edges[2])
	assert.Equal(t, []string{"Alice", "Bob"}, snap.Highlight)
}

func TestFromLinks(t *testing.T) {
	l := probabilistic.New[string]()
	require.NoError(t, l.AddEdge("UserA", "UserB", 0.7))
	require.NoError(t, l.AddEdge("UserA", "UserC", 0.4))

	snap := FromLinks(l)

	assert.Equal(t, []string{"UserA", "UserB", "UserC"}, snap.Nodes)
	assert.Equal(t, []Edge{
		{From: "UserA", To: "UserB", Label: "0.70"},
		{From: "UserA", To: "UserC", Label: "0.40"},
	}, snap.Edges)
}

func TestGenerate_Errors(t *testing.T) {
	g := NewGenerator(nil)
	snap := FromSocial(triangle(), nil)

	//nolint:staticcheck // nil context is the case under test
	_, err := g.Generate(nil, snap, FormatMermaid)
	assert.True(t, errors.Is(err, ErrNilContext))

	_, err = g.Generate(context.Background(), nil, FormatMermaid)
	assert.True(t, errors.Is(err, ErrNilSnapshot))

	_, err = g.Generate(context.Background(), snap, OutputFormat("svg"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, snap, FormatDOT)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerate_Mermaid(t *testing.T) {
	g := NewGenerator(nil)
	snap := FromSocial(triangle(), []string{"Alice", "Bob"})

	out, err := g.Generate(context.Background(), snap, FormatMermaid)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
	assert.Contains(t, out, `n0["Alice"]:::path`)
	assert.Contains(t, out, `n1["Bob"]:::path`)
	assert.Contains(t, out, `n2["Charlie"]`)
	assert.NotContains(t, out, `n2["Charlie"]:::path`)
	assert.Contains(t, out, "n0 === n1")
	assert.Contains(t, out, "n1 --- n2")
	assert.Contains(t, out, "n2 --- n0")
	assert.Contains(t, out, "linkStyle 0 ")
	assert.NotContains(t, out, "linkStyle 1 ")
}

func TestGenerate_MermaidEdgeLabels(t *testing.T) {
	snap := &Snapshot{
		Nodes: []string{"a", "b"},
		Edges: []Edge{{From: "a", To: "b", Label: "0.50"}},
	}

	out, err := NewGenerator(nil).Generate(context.Background(), snap, FormatMermaid)
	require.NoError(t, err)
	assert.Contains(t, out, "n0 ---|0.50| n1")
}

func TestGenerate_DOT(t *testing.T) {
	g := NewGenerator(&GraphOptions{Direction: "TB"})
	snap := FromSocial(triangle(), []string{"Bob", "Charlie"})

	out, err := g.Generate(context.Background(), snap, FormatDOT)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "graph Social {\n"))
	assert.Contains(t, out, "rankdir=TB;")
	assert.Contains(t, out, `"Alice";`)
	assert.Contains(t, out, `"Bob" [fillcolor="#ff6b6b", fontcolor="white"];`)
	assert.Contains(t, out, `"Alice" -- "Bob";`)
	assert.Contains(t, out, `"Bob" -- "Charlie" [color="#ff6b6b", penwidth=3];`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestGenerate_DOTEscapesQuotes(t *testing.T) {
	snap := &Snapshot{Nodes: []string{`say "hi"`}}

	out, err := NewGenerator(nil).Generate(context.Background(), snap, FormatDOT)
	require.NoError(t, err)
	assert.Contains(t, out, `"say \"hi\"";`)
}

func TestGenerate_D3(t *testing.T) {
	g := NewGenerator(nil)
	snap := FromSocial(triangle(), []string{"Alice", "Bob"})

	out, err := g.Generate(context.Background(), snap, FormatD3)
	require.NoError(t, err)

	var doc D3Graph
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	require.Len(t, doc.Nodes, 3)
	require.Len(t, doc.Links, 3)
	assert.Equal(t, D3Node{ID: "n0", Name: "Alice", Group: 2, OnPath: true}, doc.Nodes[0])
	assert.Equal(t, D3Node{ID: "n2", Name: "Charlie", Group: 1}, doc.Nodes[2])
	assert.True(t, doc.Links[0].OnPath)
	assert.False(t, doc.Links[1].OnPath)
}

func TestGenerate_MaxNodes(t *testing.T) {
	g := NewGenerator(&GraphOptions{MaxNodes: 2})
	snap := FromSocial(triangle(), nil)

	out, err := g.Generate(context.Background(), snap, FormatD3)
	require.NoError(t, err)

	var doc D3Graph
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Links, 1, "edges touching dropped nodes are omitted")
	assert.Equal(t, "n0", doc.Links[0].Source)
	assert.Equal(t, "n1", doc.Links[0].Target)

	mermaid, err := g.Generate(context.Background(), snap, FormatMermaid)
	require.NoError(t, err)
	assert.Contains(t, mermaid, "%% 1 nodes omitted")
}

func TestNewGenerator_FillsZeroOptions(t *testing.T) {
	g := NewGenerator(&GraphOptions{})
	assert.Equal(t, DefaultGraphOptions(), g.options)
}
