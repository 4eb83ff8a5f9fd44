package external

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/pipeline"
	"github.com/redink-ai/redink/internal/provider"
	"github.com/redink-ai/redink/internal/safety"
)

// Handler implements the external API endpoints. Requests run under the
// key owner's configs and credentials, scoped to the key's application.
type Handler struct {
	deps Deps
}

// Generate runs one copy-generation request on behalf of an application.
func (h *Handler) Generate(c *gin.Context) {
	var body struct {
		Prompt      string   `json:"prompt"`
		ImageURLs   []string `json:"image_urls"`
		ConfigID    *uint64  `json:"config_id"`
		CheckOutput bool     `json:"check_output"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	userID, appKeyID, application := keyContext(c)
	result, errGenerate := h.deps.Generation.Generate(c.Request.Context(), pipeline.GenerationInput{
		UserID:      userID,
		AppKeyID:    &appKeyID,
		Application: application,
		ConfigID:    body.ConfigID,
		Prompt:      body.Prompt,
		ImageURLs:   body.ImageURLs,
		CheckOutput: body.CheckOutput,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.GetHeader("User-Agent"),
	})
	if errGenerate != nil {
		respondError(c, errGenerate)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Classify runs one image-classification request on behalf of an application.
func (h *Handler) Classify(c *gin.Context) {
	var body struct {
		ImageURL   string            `json:"image_url"`
		Categories []models.Category `json:"categories"`
		ConfigID   *uint64           `json:"config_id"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	userID, appKeyID, _ := keyContext(c)
	result, errClassify := h.deps.Classification.Classify(c.Request.Context(), pipeline.ClassificationInput{
		UserID:     userID,
		AppKeyID:   &appKeyID,
		ConfigID:   body.ConfigID,
		ImageURL:   body.ImageURL,
		Categories: body.Categories,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	})
	if errClassify != nil {
		respondError(c, errClassify)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CheckContent runs the safety filter in the key's application scope.
func (h *Handler) CheckContent(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing content"})
		return
	}

	_, _, application := keyContext(c)
	passed, matched, errCheck := h.deps.Filter.Check(c.Request.Context(), body.Content, application)
	if errCheck != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"passed": passed, "forbidden_words": matched})
}

// respondError maps pipeline failures onto HTTP statuses for external callers.
func respondError(c *gin.Context, err error) {
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
	case errors.Is(err, pipeline.ErrConfigNotFound), errors.Is(err, pipeline.ErrCredentialNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "configuration missing"})
	case errors.Is(err, pipeline.ErrConfigInactive), errors.Is(err, pipeline.ErrCredentialInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "configuration inactive"})
	default:
		var invocation *provider.InvocationError
		if errors.As(err, &invocation) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider call failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
