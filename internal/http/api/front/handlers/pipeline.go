package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/pipeline"
)

// PipelineHandler exposes the generation and classification pipelines.
type PipelineHandler struct {
	generation     *pipeline.GenerationService
	classification *pipeline.ClassificationService
}

// NewPipelineHandler constructs a PipelineHandler.
func NewPipelineHandler(generation *pipeline.GenerationService, classification *pipeline.ClassificationService) *PipelineHandler {
	return &PipelineHandler{generation: generation, classification: classification}
}

// Generate runs one copy-generation request for the authenticated user.
func (h *PipelineHandler) Generate(c *gin.Context) {
	var body struct {
		Prompt      string   `json:"prompt"`
		ImageURLs   []string `json:"image_urls"`
		ConfigID    *uint64  `json:"config_id"`
		Application string   `json:"application"`
		CheckOutput bool     `json:"check_output"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	result, errGenerate := h.generation.Generate(c.Request.Context(), pipeline.GenerationInput{
		UserID:      userID(c),
		Application: strings.TrimSpace(body.Application),
		ConfigID:    body.ConfigID,
		Prompt:      body.Prompt,
		ImageURLs:   body.ImageURLs,
		CheckOutput: body.CheckOutput,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.GetHeader("User-Agent"),
	})
	if errGenerate != nil {
		respondPipelineError(c, errGenerate)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Classify runs one image-classification request for the authenticated user.
func (h *PipelineHandler) Classify(c *gin.Context) {
	var body struct {
		ImageURL   string            `json:"image_url"`
		Categories []models.Category `json:"categories"`
		ConfigID   *uint64           `json:"config_id"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	result, errClassify := h.classification.Classify(c.Request.Context(), pipeline.ClassificationInput{
		UserID:     userID(c),
		ConfigID:   body.ConfigID,
		ImageURL:   body.ImageURL,
		Categories: body.Categories,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	})
	if errClassify != nil {
		respondPipelineError(c, errClassify)
		return
	}
	c.JSON(http.StatusOK, result)
}
