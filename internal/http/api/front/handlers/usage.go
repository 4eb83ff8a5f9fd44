package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/usage"
)

// UsageHandler serves token and request usage reports.
type UsageHandler struct {
	usage *usage.Service
}

// NewUsageHandler constructs a UsageHandler.
func NewUsageHandler(service *usage.Service) *UsageHandler {
	return &UsageHandler{usage: service}
}

// Report returns aggregated usage over the requested window.
func (h *UsageHandler) Report(c *gin.Context) {
	report, errReport := h.usage.Report(c.Request.Context(), userID(c), daysParam(c))
	if errReport != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "usage report failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Daily returns per-day usage buckets over the requested window.
func (h *UsageHandler) Daily(c *gin.Context) {
	buckets, errDaily := h.usage.Daily(c.Request.Context(), userID(c), daysParam(c))
	if errDaily != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "usage report failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": buckets})
}

func daysParam(c *gin.Context) int {
	days, errParse := strconv.Atoi(c.DefaultQuery("days", "30"))
	if errParse != nil {
		return 30
	}
	return days
}
