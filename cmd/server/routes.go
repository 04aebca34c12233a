// Package main provides the AskSFU chat server entry point.
package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manmad-web/sfubot/internal/chat"
	"github.com/manmad-web/sfubot/internal/config"
	"github.com/manmad-web/sfubot/internal/rag"
	"github.com/manmad-web/sfubot/internal/rooms"
	"github.com/manmad-web/sfubot/internal/ws"
)

// chatRequest is the POST /chat body.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, cfg *config.Config, pipeline *chat.Pipeline, wsHandler *ws.Handler, engine *rooms.Engine, index *rag.Index, registry *prometheus.Registry) {
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":   "AskSFU",
			"status": "ok",
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness Probe - only checks that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - ready once the document index is built
	readyHandler := func(c *gin.Context) {
		if !index.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "document index is still building",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"chunks": index.Count(),
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// One-shot chat endpoint, same pipeline as the WebSocket flow
	router.POST("/chat", func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}
		if req.SessionID == "" {
			req.SessionID = "default"
		}

		response := pipeline.Respond(c.Request.Context(), req.SessionID, req.Message)
		c.JSON(http.StatusOK, gin.H{"response": response})
	})

	// WebSocket endpoint for streamed chat and group rooms
	router.GET("/ws", wsHandler.Serve)

	// Group chat REST surface
	router.GET("/api/chat/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": engine.RoomsWithStats()})
	})

	router.GET("/api/chat/stats", func(c *gin.Context) {
		stats := engine.RoomsWithStats()
		c.JSON(http.StatusOK, gin.H{
			"totalUsers": engine.UserCount(),
			"totalRooms": len(stats),
			"roomStats":  stats,
		})
	})

	router.GET("/api/chat/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"activeUsers": engine.UserCount(),
			"timestamp":   time.Now().UnixMilli(),
		})
	})

	// Prometheus metrics endpoint, behind Basic Auth when configured
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
