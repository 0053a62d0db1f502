// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes the social graph service over HTTP and websocket.
//
// Routes live under /v1/social. Every response carries an X-Request-ID
// header, and failures use ErrorResponse.
package api

import (
	"github.com/go-openapi/strfmt"

	"github.com/AleutianAI/AleutianSocial/services/social/journal"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`

	// RequestID echoes the X-Request-ID header.
	RequestID string `json:"request_id,omitempty"`

	// TraceID is the request's trace, when tracing is enabled.
	TraceID string `json:"trace_id,omitempty"`
}

// Error codes.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
	CodeNotEnabled     = "NOT_ENABLED"
)

// HealthResponse is returned by GET /v1/social/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// UserListResponse carries a list of users.
type UserListResponse struct {
	User  string   `json:"user"`
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// CountResponse is returned by the friend count endpoint.
type CountResponse struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// MutualQuery binds GET /v1/social/mutual.
type MutualQuery struct {
	A string `form:"a" binding:"required"`
	B string `form:"b" binding:"required"`
}

// MutualResponse is returned by the mutual friends endpoint.
type MutualResponse struct {
	A      string   `json:"a"`
	B      string   `json:"b"`
	Mutual []string `json:"mutual"`
}

// PathQuery binds GET /v1/social/path. A missing max_depth uses the
// configured default.
type PathQuery struct {
	Start    string `form:"start" binding:"required"`
	End      string `form:"end" binding:"required"`
	MaxDepth *int   `form:"max_depth" binding:"omitempty,gte=0,lte=100"`
}

// PairQuery binds the link endpoints that take two users.
type PairQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// ProbabilityResponse is returned by the probability endpoint.
type ProbabilityResponse struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Probability float64 `json:"probability"`
}

// ConnectedResponse is returned by the single-draw endpoint.
type ConnectedResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Connected bool   `json:"connected"`
}

// SampleRequest is the body of POST /v1/social/links/sample. Trials 0
// uses the configured default.
type SampleRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Trials int    `json:"trials" binding:"gte=0,lte=1000000"`
}

// RenderQuery binds GET /v1/social/graph.
type RenderQuery struct {
	Graph    string `form:"graph"`
	Format   string `form:"format"`
	Start    string `form:"start"`
	End      string `form:"end"`
	MaxDepth int    `form:"max_depth" binding:"gte=0,lte=100"`
}

// AddConnectionRequest is the body of POST /v1/social/connections.
type AddConnectionRequest struct {
	User   string `json:"user" binding:"required"`
	Friend string `json:"friend" binding:"required"`
}

// AddLinkRequest is the body of POST /v1/social/links.
type AddLinkRequest struct {
	From        string   `json:"from" binding:"required"`
	To          string   `json:"to" binding:"required"`
	Probability *float64 `json:"probability" binding:"required"`
}

// MutationResponse acknowledges a write.
type MutationResponse struct {
	Status string `json:"status"`
}

// HistoryEntry is one journaled mutation.
type HistoryEntry struct {
	Seq         uint64          `json:"seq"`
	Kind        journal.Kind    `json:"kind"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Probability *float64        `json:"probability,omitempty"`
	Timestamp   strfmt.DateTime `json:"timestamp"`
}

// HistoryResponse is returned by GET /v1/social/history.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Count   int            `json:"count"`
}

func toHistory(entries []journal.Entry) HistoryResponse {
	out := HistoryResponse{Entries: make([]HistoryEntry, 0, len(entries)), Count: len(entries)}
	for _, e := range entries {
		he := HistoryEntry{
			Seq:       e.Seq,
			Kind:      e.Kind,
			From:      e.From,
			To:        e.To,
			Timestamp: strfmt.DateTime(e.Timestamp),
		}
		if e.Kind == journal.KindLink {
			p := e.Probability
			he.Probability = &p
		}
		out.Entries = append(out.Entries, he)
	}
	return out
}
