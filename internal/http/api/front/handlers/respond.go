// Package handlers implements the front-office API endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/pipeline"
	"github.com/redink-ai/redink/internal/provider"
	"github.com/redink-ai/redink/internal/safety"
	"github.com/redink-ai/redink/internal/store"
)

// respondPipelineError maps pipeline failures onto HTTP statuses. Vendor
// failures surface as 502 so callers can distinguish them from our own 500s.
func respondPipelineError(c *gin.Context, err error) {
	var verr *pipeline.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}
	var blocked *safety.BlockedError
	if errors.As(err, &blocked) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "content contains forbidden words",
			"forbidden_words": blocked.Words,
		})
		return
	}
	switch {
	case errors.Is(err, pipeline.ErrConfigNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "config not found"})
	case errors.Is(err, pipeline.ErrConfigInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "config inactive"})
	case errors.Is(err, pipeline.ErrCredentialNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "credential not found"})
	case errors.Is(err, pipeline.ErrCredentialInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "credential inactive"})
	default:
		var invocation *provider.InvocationError
		if errors.As(err, &invocation) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider call failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondStoreError maps store failures onto HTTP statuses.
func respondStoreError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}

// userID returns the authenticated user's ID set by the auth middleware.
func userID(c *gin.Context) uint64 {
	id, _ := c.Get("userID")
	uid, _ := id.(uint64)
	return uid
}
