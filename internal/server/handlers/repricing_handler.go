package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/repricer/internal/repository/mongodb"
	"github.com/mamadbah2/repricer/internal/service/engine"
)

// RepricingHandler exposes the manual-trigger and audit endpoints.
type RepricingHandler struct {
	eng    *engine.Engine
	audit  mongodb.Repository
	logger *zap.Logger
}

// NewRepricingHandler constructs the HTTP handler adapter.
func NewRepricingHandler(eng *engine.Engine, audit mongodb.Repository, logger *zap.Logger) *RepricingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepricingHandler{eng: eng, audit: audit, logger: logger}
}

// Run triggers one repricing cycle synchronously and returns its summary.
func (h *RepricingHandler) Run(c *gin.Context) {
	summary, err := h.eng.RunCycle(c.Request.Context())
	if err != nil {
		h.logger.Error("manual cycle failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "repricing cycle failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Decisions returns the most recent price decisions from the audit store.
func (h *RepricingHandler) Decisions(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	decisions, err := h.audit.RecentDecisions(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed loading decisions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to load decisions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"decisions": decisions})
}
