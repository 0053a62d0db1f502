// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AleutianAI/AleutianSocial/services/social/config"
	"github.com/AleutianAI/AleutianSocial/services/social/journal"
	"github.com/AleutianAI/AleutianSocial/services/social/probabilistic"
	"github.com/AleutianAI/AleutianSocial/services/social/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Connections = [][]string{
		{"Alice", "Bob"}, {"Alice", "Charlie"}, {"Alice", "David"},
		{"Bob", "Charlie"}, {"Bob", "Eve"}, {"Bob", "Frank"},
		{"Charlie", "David"}, {"Charlie", "Eve"},
		{"David", "Frank"}, {"Eve", "George"},
		{"Frank", "George"}, {"George", "Harry"},
	}
	cfg.Links = []config.LinkConfig{
		{From: "UserA", To: "UserB", Probability: 0.7},
		{From: "UserA", To: "UserC", Probability: 0.4},
		{From: "UserB", To: "UserC", Probability: 0.6},
	}
	return &cfg
}

func setupRouter(t *testing.T, opts RouterOptions, svcOpts ...service.Option) *gin.Engine {
	t.Helper()
	svcOpts = append(svcOpts, service.WithSource(probabilistic.SourceFunc(func() float64 { return 0.5 })))
	svc, err := service.New(testConfig(), svcOpts...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return NewRouter(NewHandlers(svc, nil), opts)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHandleHealth(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, HealthResponse{Status: "ok", Version: ServiceVersion}, decode[HealthResponse](t, w))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Echoed(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/v1/social/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestHandleFriends(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/users/Bob/friends", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[UserListResponse](t, w)
	assert.Equal(t, []string{"Alice", "Charlie", "Eve", "Frank"}, resp.Users)
	assert.Equal(t, 4, resp.Count)

	w = do(t, router, http.MethodGet, "/v1/social/users/Nobody/friends", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[UserListResponse](t, w).Users)
}

func TestHandleCount(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/users/George/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[CountResponse](t, w).Count)
}

func TestHandleFriendsOfFriends(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/users/Alice/fof", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []string{"Eve", "Frank"}, decode[UserListResponse](t, w).Users)
}

func TestHandleMutual(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/mutual?a=Alice&b=Bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Charlie"}, decode[MutualResponse](t, w).Mutual)

	w = do(t, router, http.MethodGet, "/v1/social/mutual?a=Alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidRequest, decode[ErrorResponse](t, w).Code)
}

func TestHandlePath(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantFound bool
		wantPath  []string
	}{
		{"default depth", "start=Alice&end=George", http.StatusOK, true, []string{"Alice", "Bob", "Eve", "George"}},
		{"beyond default depth", "start=Alice&end=Harry", http.StatusOK, false, nil},
		{"explicit depth", "start=Alice&end=Harry&max_depth=4", http.StatusOK, true, []string{"Alice", "Bob", "Eve", "George", "Harry"}},
		{"zero depth", "start=Alice&end=Bob&max_depth=0", http.StatusOK, false, nil},
		{"missing end", "start=Alice", http.StatusBadRequest, false, nil},
		{"negative depth", "start=Alice&end=Bob&max_depth=-1", http.StatusBadRequest, false, nil},
		{"non-numeric depth", "start=Alice&end=Bob&max_depth=deep", http.StatusBadRequest, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, "/v1/social/path?"+tt.query, nil)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			res := decode[service.PathResult](t, w)
			assert.Equal(t, tt.wantFound, res.Found)
			assert.Equal(t, tt.wantPath, res.Path)
		})
	}
}

func TestHandleAddConnection(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodPost, "/v1/social/connections", AddConnectionRequest{User: "Alice", Friend: "Harry"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/v1/social/path?start=Alice&end=Harry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Alice", "Harry"}, decode[service.PathResult](t, w).Path)

	w = do(t, router, http.MethodPost, "/v1/social/connections", map[string]string{"user": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/v1/social/connections", AddConnectionRequest{User: "Alice", Friend: "Ivy\n"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "control characters")
}

func TestHandleLinks(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/links/probability?from=UserB&to=UserA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.7, decode[ProbabilityResponse](t, w).Probability)

	p := 0.0
	w = do(t, router, http.MethodPost, "/v1/social/links", AddLinkRequest{From: "UserA", To: "UserB", Probability: &p})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/v1/social/links/probability?from=UserA&to=UserB", nil)
	assert.Equal(t, 0.0, decode[ProbabilityResponse](t, w).Probability)

	bad := 1.5
	w = do(t, router, http.MethodPost, "/v1/social/links", AddLinkRequest{From: "UserA", To: "UserB", Probability: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/v1/social/links", map[string]string{"from": "UserA", "to": "UserB"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "probability is required")
}

func TestHandleConnected(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/links/connected?from=UserA&to=UserB", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[ConnectedResponse](t, w).Connected, "0.5 < 0.7")

	w = do(t, router, http.MethodGet, "/v1/social/links/connected?from=UserA&to=UserC", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[ConnectedResponse](t, w).Connected, "0.5 >= 0.4")
}

func TestHandleSample(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodPost, "/v1/social/links/sample", SampleRequest{From: "UserA", To: "UserB", Trials: 20})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[service.SampleResult](t, w)
	assert.Equal(t, 1.0, res.Rate)
	assert.Equal(t, 20, res.Trials)

	w = do(t, router, http.MethodPost, "/v1/social/links/sample", SampleRequest{From: "UserA", To: "UserB", Trials: -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRender(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/graph?start=Alice&end=George", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flowchart LR")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = do(t, router, http.MethodGet, "/v1/social/graph?graph=links&format=d3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.True(t, json.Valid(w.Body.Bytes()))

	w = do(t, router, http.MethodGet, "/v1/social/graph?format=png", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/v1/social/graph?graph=other", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleStats(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[service.Stats](t, w)
	assert.Equal(t, 8, stats.Users)
	assert.Equal(t, 3, stats.Links)
}

func TestRateLimit(t *testing.T) {
	router := setupRouter(t, RouterOptions{Limiter: NewLimiter(0.001, 2)})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/v1/social/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/v1/social/health", nil).Code)

	w := do(t, router, http.MethodGet, "/v1/social/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, CodeRateLimited, decode[ErrorResponse](t, w).Code)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 10))
	l := NewLimiter(5, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}

func TestHandleHistory(t *testing.T) {
	j, err := journal.Open(journal.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	router := setupRouter(t, RouterOptions{}, service.WithJournal(j))

	w := do(t, router, http.MethodPost, "/v1/social/connections", AddConnectionRequest{User: "Harry", Friend: "Ivy"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := 0.0
	w = do(t, router, http.MethodPost, "/v1/social/links", map[string]any{"from": "UserC", "to": "UserD", "probability": p})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, "/v1/social/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var raw struct {
		Count   int              `json:"count"`
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, 2, raw.Count)
	require.Len(t, raw.Entries, 2)
	assert.Equal(t, "connection", raw.Entries[0]["kind"])
	assert.NotContains(t, raw.Entries[0], "probability")
	assert.Equal(t, "link", raw.Entries[1]["kind"])
	assert.Equal(t, 0.0, raw.Entries[1]["probability"], "a zero probability is still reported")
	assert.NotEmpty(t, raw.Entries[1]["timestamp"])
}

func TestHandleHistory_NoJournal(t *testing.T) {
	router := setupRouter(t, RouterOptions{})

	w := do(t, router, http.MethodGet, "/v1/social/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotEnabled, decode[ErrorResponse](t, w).Code)
}

func TestErrorResponse_TraceID(t *testing.T) {
	w := do(t, setupRouter(t, RouterOptions{}), http.MethodPost, "/v1/social/links/sample", SampleRequest{From: "UserA", To: "UserB", Trials: -1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, decode[ErrorResponse](t, w).TraceID, "no tracer provider installed")

	tp := sdktrace.NewTracerProvider()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	w = do(t, setupRouter(t, RouterOptions{}), http.MethodPost, "/v1/social/links/sample", SampleRequest{From: "UserA", To: "UserB", Trials: -1})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Len(t, resp.TraceID, 32)
	assert.NotEmpty(t, resp.RequestID)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, isClientError(fmt.Errorf("sample: %w", service.ErrTooManyTrials)))
	assert.True(t, isClientError(fmt.Errorf("friends: %w", service.ErrInvalidNode)))
	assert.False(t, isClientError(errors.New("disk full")))
}
