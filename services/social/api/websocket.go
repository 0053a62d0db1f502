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
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/AleutianSocial/pkg/validation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

// WSRequest is one query on the websocket session.
//
// Action is one of friends, count, mutual, fof, path, probability,
// connected, sample, stats, history, add_connection or add_link. User and
// Other name the users involved; path reads Start, End and MaxDepth.
type WSRequest struct {
	ID          string   `json:"id,omitempty"`
	Action      string   `json:"action"`
	User        string   `json:"user,omitempty"`
	Other       string   `json:"other,omitempty"`
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	MaxDepth    *int     `json:"max_depth,omitempty"`
	Trials      int      `json:"trials,omitempty"`
	Probability *float64 `json:"probability,omitempty"`
}

// WSResponse answers one WSRequest. ID echoes the request.
type WSResponse struct {
	ID     string `json:"id,omitempty"`
	Action string `json:"action"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (h *Handlers) sendJSON(ws *websocket.Conn, v any) error {
	err := ws.WriteJSON(v)
	if err != nil {
		h.logger.Warn("failed to write websocket message", "error", err)
	}
	return err
}

// HandleWebSocket handles GET /v1/social/ws.
//
// Description:
//
//	Upgrades the connection and greets the client with a session_created
//	message carrying the session ID. Each subsequent JSON request gets one
//	response. A malformed request gets an error response and the session
//	continues; a read failure ends it.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()

	sessionID := uuid.NewString()
	logger := h.logger.With("session_id", sessionID)
	logger.Info("websocket session started")

	if err := h.sendJSON(ws, map[string]any{
		"action":    "session_created",
		"sessionId": sessionID,
	}); err != nil {
		return
	}

	ctx := c.Request.Context()
	for {
		var req WSRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", "error", err)
			}
			logger.Info("websocket session ended")
			return
		}

		resp := WSResponse{ID: req.ID, Action: req.Action}
		result, err := h.dispatch(ctx, req)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Result = result
		}
		if err := h.sendJSON(ws, resp); err != nil {
			return
		}
	}
}

func (h *Handlers) dispatch(ctx context.Context, req WSRequest) (any, error) {
	switch req.Action {
	case "friends":
		friends := h.svc.Friends(ctx, req.User)
		return UserListResponse{User: req.User, Users: friends, Count: len(friends)}, nil
	case "count":
		return CountResponse{User: req.User, Count: h.svc.FriendCount(ctx, req.User)}, nil
	case "mutual":
		return MutualResponse{A: req.User, B: req.Other, Mutual: h.svc.MutualFriends(ctx, req.User, req.Other)}, nil
	case "fof":
		fof := h.svc.FriendsOfFriends(ctx, req.User)
		return UserListResponse{User: req.User, Users: fof, Count: len(fof)}, nil
	case "path":
		depth := h.svc.DefaultMaxDepth()
		if req.MaxDepth != nil {
			depth = *req.MaxDepth
		}
		return h.svc.FindPath(ctx, req.Start, req.End, depth)
	case "probability":
		return ProbabilityResponse{From: req.User, To: req.Other, Probability: h.svc.Probability(ctx, req.User, req.Other)}, nil
	case "connected":
		return ConnectedResponse{From: req.User, To: req.Other, Connected: h.svc.AreConnected(ctx, req.User, req.Other)}, nil
	case "sample":
		return h.svc.Sample(ctx, req.User, req.Other, req.Trials)
	case "add_connection":
		if err := validation.ValidateUserIDs(req.User, req.Other); err != nil {
			return nil, err
		}
		if err := h.svc.AddConnection(ctx, req.User, req.Other); err != nil {
			return nil, err
		}
		return MutationResponse{Status: "created"}, nil
	case "add_link":
		if req.Probability == nil {
			return nil, fmt.Errorf("add_link requires probability")
		}
		if err := validation.ValidateUserIDs(req.User, req.Other); err != nil {
			return nil, err
		}
		if err := h.svc.AddLink(ctx, req.User, req.Other, *req.Probability); err != nil {
			return nil, err
		}
		return MutationResponse{Status: "created"}, nil
	case "stats":
		return h.svc.Stats(), nil
	case "history":
		entries, err := h.svc.History(ctx)
		if err != nil {
			return nil, err
		}
		return toHistory(entries), nil
	default:
		return nil, fmt.Errorf("unknown action %q", req.Action)
	}
}

