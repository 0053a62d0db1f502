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
	"fmt"
	"strings"
)

// Generator renders snapshots.
//
// # Thread Safety
//
// Safe for concurrent use.
type Generator struct {
	options GraphOptions
}

// GraphOptions configures rendering.
type GraphOptions struct {
	// MaxNodes limits the number of nodes in the output. Edges touching a
	// dropped node are dropped too.
	// Default: 200
	MaxNodes int

	// Direction is the Mermaid/DOT layout direction (TB, LR, BT, RL).
	// Default: "LR"
	Direction string
}

// DefaultGraphOptions returns sensible defaults.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes:  200,
		Direction: "LR",
	}
}

// NewGenerator creates a generator. A nil opts uses DefaultGraphOptions.
func NewGenerator(opts *GraphOptions) *Generator {
	if opts == nil {
		defaults := DefaultGraphOptions()
		opts = &defaults
	}
	o := *opts
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultGraphOptions().MaxNodes
	}
	if o.Direction == "" {
		o.Direction = DefaultGraphOptions().Direction
	}
	return &Generator{options: o}
}

// Generate renders snap in the requested format.
//
// # Inputs
//
//   - ctx: Context for cancellation.
//   - snap: The snapshot to render.
//   - format: The output format.
//
// # Outputs
//
//   - string: The rendered graph.
//   - error: Non-nil on a nil argument, unsupported format, or cancellation.
func (g *Generator) Generate(ctx context.Context, snap *Snapshot, format OutputFormat) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	if snap == nil {
		return "", ErrNilSnapshot
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	v := g.prepare(snap)

	switch format {
	case FormatMermaid:
		return g.generateMermaid(v), nil
	case FormatDOT:
		return g.generateDOT(v), nil
	case FormatD3:
		return g.generateD3JSON(v)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// view is a snapshot trimmed to MaxNodes with node IDs assigned.
type view struct {
	nodes     []string
	ids       map[string]string
	edges     []Edge
	hiNodes   map[string]bool
	hiEdges   map[[2]string]bool
	truncated int
}

func (g *Generator) prepare(snap *Snapshot) *view {
	v := &view{ids: make(map[string]string)}
	v.hiNodes, v.hiEdges = snap.highlightSets()

	for _, n := range snap.Nodes {
		if _, dup := v.ids[n]; dup {
			continue
		}
		if len(v.nodes) >= g.options.MaxNodes {
			v.truncated++
			continue
		}
		v.ids[n] = fmt.Sprintf("n%d", len(v.nodes))
		v.nodes = append(v.nodes, n)
	}

	for _, e := range snap.Edges {
		_, okFrom := v.ids[e.From]
		_, okTo := v.ids[e.To]
		if okFrom && okTo {
			v.edges = append(v.edges, e)
		}
	}
	return v
}

func (v *view) edgeHighlighted(e Edge) bool {
	return v.hiEdges[[2]string{e.From, e.To}]
}

// generateMermaid creates a Mermaid flowchart with undirected links.
func (g *Generator) generateMermaid(v *view) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("flowchart %s\n", g.options.Direction))
	if v.truncated > 0 {
		sb.WriteString(fmt.Sprintf("    %%%% %d nodes omitted\n", v.truncated))
	}

	for _, n := range v.nodes {
		class := ""
		if v.hiNodes[n] {
			class = ":::path"
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]%s\n", v.ids[n], escapeMermaidLabel(n), class))
	}

	sb.WriteString("\n")
	var hiLinks []int
	for i, e := range v.edges {
		link := "---"
		if v.edgeHighlighted(e) {
			link = "==="
			hiLinks = append(hiLinks, i)
		}
		if e.Label != "" {
			sb.WriteString(fmt.Sprintf("    %s %s|%s| %s\n", v.ids[e.From], link, escapeMermaidLabel(e.Label), v.ids[e.To]))
		} else {
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", v.ids[e.From], link, v.ids[e.To]))
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef path fill:#ff6b6b,stroke:#333,stroke-width:2px,color:#fff\n")
	for _, i := range hiLinks {
		sb.WriteString(fmt.Sprintf("    linkStyle %d stroke:#ff6b6b,stroke-width:3px\n", i))
	}

	return sb.String()
}

// generateDOT creates a Graphviz undirected graph.
func (g *Generator) generateDOT(v *view) string {
	var sb strings.Builder

	sb.WriteString("graph Social {\n")
	sb.WriteString(fmt.Sprintf("    rankdir=%s;\n", g.options.Direction))
	sb.WriteString("    node [shape=ellipse, style=filled, fillcolor=\"#74b9ff\"];\n")
	if v.truncated > 0 {
		sb.WriteString(fmt.Sprintf("    overflow [label=\"+%d more\", shape=plaintext];\n", v.truncated))
	}
	sb.WriteString("\n")

	for _, n := range v.nodes {
		if v.hiNodes[n] {
			sb.WriteString(fmt.Sprintf("    %s [fillcolor=\"#ff6b6b\", fontcolor=\"white\"];\n", quoteDOTID(n)))
		} else {
			sb.WriteString(fmt.Sprintf("    %s;\n", quoteDOTID(n)))
		}
	}

	sb.WriteString("\n")
	for _, e := range v.edges {
		attrs := make([]string, 0, 3)
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=\"%s\"", escapeDOTLabel(e.Label)))
		}
		if v.edgeHighlighted(e) {
			attrs = append(attrs, "color=\"#ff6b6b\"", "penwidth=3")
		}
		suffix := ""
		if len(attrs) > 0 {
			suffix = " [" + strings.Join(attrs, ", ") + "]"
		}
		sb.WriteString(fmt.Sprintf("    %s -- %s%s;\n", quoteDOTID(e.From), quoteDOTID(e.To), suffix))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// D3Node is a node in the D3 force-graph JSON.
type D3Node struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Group  int    `json:"group"`
	OnPath bool   `json:"onPath,omitempty"`
}

// D3Link is an edge in the D3 force-graph JSON.
type D3Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	OnPath bool   `json:"onPath,omitempty"`
}

// D3Graph is the D3 force-graph document.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

// generateD3JSON creates D3.js compatible JSON.
func (g *Generator) generateD3JSON(v *view) (string, error) {
	doc := D3Graph{
		Nodes: make([]D3Node, 0, len(v.nodes)),
		Links: make([]D3Link, 0, len(v.edges)),
	}

	for _, n := range v.nodes {
		group := 1
		if v.hiNodes[n] {
			group = 2
		}
		doc.Nodes = append(doc.Nodes, D3Node{
			ID:     v.ids[n],
			Name:   n,
			Group:  group,
			OnPath: v.hiNodes[n],
		})
	}

	for _, e := range v.edges {
		doc.Links = append(doc.Links, D3Link{
			Source: v.ids[e.From],
			Target: v.ids[e.To],
			Label:  e.Label,
			OnPath: v.edgeHighlighted(e),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal d3 graph: %w", err)
	}
	return string(data), nil
}

func quoteDOTID(s string) string {
	return fmt.Sprintf("\"%s\"", escapeDOTLabel(s))
}

func escapeMermaidLabel(s string) string {
	replacer := strings.NewReplacer(
		"\"", "#quot;",
		"<", "&lt;",
		">", "&gt;",
		"|", "#124;",
	)
	return replacer.Replace(s)
}

func escapeDOTLabel(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}
