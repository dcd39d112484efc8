package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"did-optimizer/internal/contextstore"
	"did-optimizer/internal/didapi"
	"did-optimizer/internal/reporter"
	"did-optimizer/internal/selection"
	"did-optimizer/internal/syncengine"
	"did-optimizer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Selector is the selection service surface the handlers need.
type Selector interface {
	Select(ctx context.Context, req selection.Request) (selection.Result, error)
}

// Reporter is the reporting service surface the handlers need.
type Reporter interface {
	Report(ctx context.Context, req reporter.Request) error
}

// Handlers wires HTTP requests to the agent services.
// Keep this file free of business logic; handlers validate, delegate, map errors.
type Handlers struct {
	Selection Selector
	Reporter  Reporter

	// Ops surface.
	Store      contextstore.Store
	Checkpoint *syncengine.Checkpoint
	ContextTTL time.Duration
	BatchSize  int
}

// PostSelection serves the dialer's "give me a caller ID" request.
// Always answers with a usable number; fallback substitution happens in the
// service, so a remote outage is a 200 with fallback=true, never a 5xx.
func (h Handlers) PostSelection(c *gin.Context) {
	var req selection.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	res, err := h.Selection.Select(c.Request.Context(), req)
	if errors.Is(err, selection.ErrInvalidArgument) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id, agent_id and phone are required"})
		return
	}
	if err != nil {
		logger.FromGin(c).Error("selection failed unexpectedly", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// PostCallResult accepts a completed call outcome from the dialer.
func (h Handlers) PostCallResult(c *gin.Context) {
	var req reporter.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	err := h.Reporter.Report(c.Request.Context(), req)
	switch {
	case errors.Is(err, reporter.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id and phone are required"})
	case errors.Is(err, didapi.ErrReportFailed), errors.Is(err, didapi.ErrUnauthorized):
		logger.FromGin(c).Error("call result delivery failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "upstream delivery failed"})
	case err != nil:
		logger.FromGin(c).Error("call result handling failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "reported"})
	}
}

// GetSyncStatus exposes the sync checkpoint for operators.
func (h Handlers) GetSyncStatus(c *gin.Context) {
	last, err := h.Checkpoint.Load()
	if err != nil {
		logger.FromGin(c).Error("checkpoint read failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "checkpoint unreadable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"last_unique_id": last,
		"first_run":      last == "",
		"batch_size":     h.BatchSize,
	})
}

// PostContextSweep removes orphaned call contexts older than the TTL.
func (h Handlers) PostContextSweep(c *gin.Context) {
	removed, err := h.Store.SweepExpired(c.Request.Context(), h.ContextTTL)
	if err != nil {
		logger.FromGin(c).Error("context sweep failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
