package main

import (
	"did-optimizer/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, localKeyMW, opsMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// Data plane: called by the dialer on its hot path. Static local key;
	// the latency budget here has no room for token parsing.
	{
		data := v1.Group("")
		data.Use(localKeyMW)
		data.POST("/selection", h.PostSelection)
		data.POST("/call-result", h.PostCallResult)
	}

	// Ops plane: operator tooling, JWT-protected.
	{
		ops := v1.Group("/ops")
		ops.Use(opsMW)
		ops.GET("/sync/status", h.GetSyncStatus)
		ops.POST("/contexts/sweep", h.PostContextSweep)
	}
}
