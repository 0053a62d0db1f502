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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianSocial/pkg/logging"
	"github.com/AleutianAI/AleutianSocial/pkg/validation"
	"github.com/AleutianAI/AleutianSocial/services/social/probabilistic"
	"github.com/AleutianAI/AleutianSocial/services/social/service"
	"github.com/AleutianAI/AleutianSocial/services/social/telemetry"
	"github.com/AleutianAI/AleutianSocial/services/social/visualization"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "0.1.0"

// Handlers serves the social graph routes.
type Handlers struct {
	svc    *service.Service
	logger *logging.Logger
}

// NewHandlers creates handlers backed by svc. A nil logger discards.
func NewHandlers(svc *service.Service, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handlers{svc: svc, logger: logger.With("component", "api")}
}

// HandleHealth handles GET /v1/social/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: ServiceVersion})
}

// HandleStats handles GET /v1/social/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

// HandleFriends handles GET /v1/social/users/:user/friends.
func (h *Handlers) HandleFriends(c *gin.Context) {
	user := c.Param("user")
	friends := h.svc.Friends(c.Request.Context(), user)
	c.JSON(http.StatusOK, UserListResponse{User: user, Users: friends, Count: len(friends)})
}

// HandleCount handles GET /v1/social/users/:user/count.
func (h *Handlers) HandleCount(c *gin.Context) {
	user := c.Param("user")
	c.JSON(http.StatusOK, CountResponse{User: user, Count: h.svc.FriendCount(c.Request.Context(), user)})
}

// HandleFriendsOfFriends handles GET /v1/social/users/:user/fof.
func (h *Handlers) HandleFriendsOfFriends(c *gin.Context) {
	user := c.Param("user")
	fof := h.svc.FriendsOfFriends(c.Request.Context(), user)
	c.JSON(http.StatusOK, UserListResponse{User: user, Users: fof, Count: len(fof)})
}

// HandleMutual handles GET /v1/social/mutual?a=&b=.
func (h *Handlers) HandleMutual(c *gin.Context) {
	var q MutualQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, MutualResponse{
		A:      q.A,
		B:      q.B,
		Mutual: h.svc.MutualFriends(c.Request.Context(), q.A, q.B),
	})
}

// HandlePath handles GET /v1/social/path?start=&end=&max_depth=.
//
// Response:
//
//	200 OK: service.PathResult, with found=false when no path exists
//	400 Bad Request: missing endpoint or invalid depth
func (h *Handlers) HandlePath(c *gin.Context) {
	var q PathQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	depth := h.svc.DefaultMaxDepth()
	if q.MaxDepth != nil {
		depth = *q.MaxDepth
	}

	res, err := h.svc.FindPath(c.Request.Context(), q.Start, q.End, depth)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleProbability handles GET /v1/social/links/probability?from=&to=.
func (h *Handlers) HandleProbability(c *gin.Context) {
	var q PairQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, ProbabilityResponse{
		From:        q.From,
		To:          q.To,
		Probability: h.svc.Probability(c.Request.Context(), q.From, q.To),
	})
}

// HandleConnected handles GET /v1/social/links/connected?from=&to=.
// Each call is one independent draw.
func (h *Handlers) HandleConnected(c *gin.Context) {
	var q PairQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, ConnectedResponse{
		From:      q.From,
		To:        q.To,
		Connected: h.svc.AreConnected(c.Request.Context(), q.From, q.To),
	})
}

// HandleSample handles POST /v1/social/links/sample.
func (h *Handlers) HandleSample(c *gin.Context) {
	var req SampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	res, err := h.svc.Sample(c.Request.Context(), req.From, req.To, req.Trials)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleRender handles GET /v1/social/graph.
//
// Query Parameters:
//
//	graph: "social" (default) or "links"
//	format: "mermaid" (default), "dot" or "d3"
//	start, end: highlight the connection path between two users
//	max_depth: depth for the highlighted path search
func (h *Handlers) HandleRender(c *gin.Context) {
	var q RenderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, err)
		return
	}

	out, err := h.svc.Render(c.Request.Context(), service.RenderRequest{
		Graph:    service.GraphKind(q.Graph),
		Format:   visualization.OutputFormat(q.Format),
		Start:    q.Start,
		End:      q.End,
		MaxDepth: q.MaxDepth,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	contentType := "text/plain; charset=utf-8"
	if visualization.OutputFormat(q.Format) == visualization.FormatD3 {
		contentType = "application/json"
	}
	c.Data(http.StatusOK, contentType, []byte(out))
}

// HandleAddConnection handles POST /v1/social/connections.
func (h *Handlers) HandleAddConnection(c *gin.Context) {
	var req AddConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := validation.ValidateUserIDs(req.User, req.Friend); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := h.svc.AddConnection(c.Request.Context(), req.User, req.Friend); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, MutationResponse{Status: "created"})
}

// HandleAddLink handles POST /v1/social/links.
//
// Response:
//
//	201 Created: link stored (an existing link is overwritten)
//	400 Bad Request: probability outside [0, 1] or a malformed user ID
func (h *Handlers) HandleAddLink(c *gin.Context) {
	var req AddLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := validation.ValidateUserIDs(req.From, req.To); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := h.svc.AddLink(c.Request.Context(), req.From, req.To, *req.Probability); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, MutationResponse{Status: "created"})
}

// HandleHistory handles GET /v1/social/history.
//
// Response:
//
//	200 OK: journaled mutations in replay order
//	404 Not Found: the server runs without a journal
func (h *Handlers) HandleHistory(c *gin.Context) {
	entries, err := h.svc.History(c.Request.Context())
	if errors.Is(err, service.ErrNoJournal) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     err.Error(),
			Code:      CodeNotEnabled,
			RequestID: requestID(c),
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toHistory(entries))
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     err.Error(),
		Code:      CodeInvalidRequest,
		RequestID: requestID(c),
		TraceID:   telemetry.TraceID(c.Request.Context()),
	})
}

// fail maps service errors to status codes.
func (h *Handlers) fail(c *gin.Context, err error) {
	if isClientError(err) {
		h.badRequest(c, err)
		return
	}
	traceID := telemetry.TraceID(c.Request.Context())
	h.logger.Error("request failed", "path", c.FullPath(), "request_id", requestID(c), "trace_id", traceID, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:     "internal error",
		Code:      CodeInternal,
		RequestID: requestID(c),
		TraceID:   traceID,
	})
}

func isClientError(err error) bool {
	for _, target := range []error{
		service.ErrInvalidNode,
		service.ErrInvalidDepth,
		service.ErrUnknownGraph,
		service.ErrTooManyTrials,
		probabilistic.ErrInvalidProbability,
		probabilistic.ErrInvalidTrials,
		visualization.ErrUnsupportedFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
