// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package service is the concurrency-safe facade over the social graph
// and the probabilistic link graph.
//
// The HTTP API, the websocket session and every CLI command go through a
// Service. It owns both graphs, caches connection paths, records traces
// and metrics, and forwards sampling runs to a samples.Recorder.
package service

import (
	"github.com/go-openapi/strfmt"

	"github.com/AleutianAI/AleutianSocial/services/social/cache"
	"github.com/AleutianAI/AleutianSocial/services/social/journal"
	"github.com/AleutianAI/AleutianSocial/services/social/visualization"
)

// GraphKind selects which graph Render draws.
type GraphKind string

const (
	GraphSocial GraphKind = "social"
	GraphLinks  GraphKind = "links"
)

// PathResult is the outcome of a connection path search.
type PathResult struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	MaxDepth int      `json:"max_depth"`
	Found    bool     `json:"found"`
	Path     []string `json:"path"`
	Hops     int      `json:"hops"`
}

// SampleResult is the outcome of a sampling run.
type SampleResult struct {
	RunID       strfmt.UUID `json:"run_id"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	Probability float64     `json:"probability"`
	Rate        float64     `json:"rate"`
	Trials      int         `json:"trials"`
}

// RenderRequest describes a rendering.
//
// For the social graph a non-empty Start and End highlight the connection
// path between them, searched with MaxDepth (0 uses the configured depth).
type RenderRequest struct {
	Graph    GraphKind
	Format   visualization.OutputFormat
	Start    string
	End      string
	MaxDepth int
}

// Stats summarizes the service state.
type Stats struct {
	Users       int         `json:"users"`
	Connections int         `json:"connections"`
	Links       int         `json:"links"`
	Cache       cache.Stats `json:"cache"`

	// Journal is nil when mutations are not journaled.
	Journal *journal.Stats `json:"journal,omitempty"`
}
