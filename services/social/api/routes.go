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
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianSocial/services/social/telemetry"
)

// RegisterRoutes mounts the social graph routes under rg.
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	social := rg.Group("/social")
	{
		social.GET("/health", handlers.HandleHealth)
		social.GET("/stats", handlers.HandleStats)

		// Friendship queries
		users := social.Group("/users/:user")
		{
			users.GET("/friends", handlers.HandleFriends)
			users.GET("/count", handlers.HandleCount)
			users.GET("/fof", handlers.HandleFriendsOfFriends)
		}
		social.GET("/mutual", handlers.HandleMutual)
		social.GET("/path", handlers.HandlePath)
		social.POST("/connections", handlers.HandleAddConnection)

		// Probabilistic links
		links := social.Group("/links")
		{
			links.POST("", handlers.HandleAddLink)
			links.GET("/probability", handlers.HandleProbability)
			links.GET("/connected", handlers.HandleConnected)
			links.POST("/sample", handlers.HandleSample)
		}

		social.GET("/history", handlers.HandleHistory)
		social.GET("/graph", handlers.HandleRender)
		social.GET("/ws", handlers.HandleWebSocket)
	}
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// ServiceName labels otelgin spans.
	// Default: "socialgraph"
	ServiceName string

	// Limiter bounds request rate. Nil disables limiting.
	Limiter *rate.Limiter

	// Metrics records HTTP metrics. Nil disables them.
	Metrics *telemetry.Metrics

	// ExposeMetrics mounts the Prometheus handler at /metrics.
	ExposeMetrics bool
}

// NewRouter builds the engine with recovery, tracing, request IDs,
// metrics and rate limiting in that order.
func NewRouter(handlers *Handlers, opts RouterOptions) *gin.Engine {
	if opts.ServiceName == "" {
		opts.ServiceName = "socialgraph"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(RequestID())
	router.Use(Metrics(opts.Metrics))
	router.Use(RateLimit(opts.Limiter))

	if opts.ExposeMetrics {
		router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
	}
	RegisterRoutes(router.Group("/v1"), handlers)
	return router
}
