package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/safety"
	"github.com/redink-ai/redink/internal/store"
)

// ForbiddenWordHandler manages the prohibited word list. Every mutation
// invalidates the affected scope in the safety cache so checks see the
// change immediately.
type ForbiddenWordHandler struct {
	words  *store.ForbiddenWordStore
	filter *safety.Filter
}

// NewForbiddenWordHandler constructs a ForbiddenWordHandler.
func NewForbiddenWordHandler(words *store.ForbiddenWordStore, filter *safety.Filter) *ForbiddenWordHandler {
	return &ForbiddenWordHandler{words: words, filter: filter}
}

func forbiddenWordView(row *models.ForbiddenWord) gin.H {
	return gin.H{
		"id":          row.ID,
		"word":        row.Word,
		"application": row.Application,
		"level":       row.Level,
		"remark":      row.Remark,
		"created_at":  row.CreatedAt,
		"updated_at":  row.UpdatedAt,
	}
}

// List returns one page of word entries matching the filters.
func (h *ForbiddenWordHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	rows, total, errSearch := h.words.Search(c.Request.Context(), c.Query("application"), c.Query("keyword"), page, pageSize)
	if errSearch != nil {
		respondStoreError(c, errSearch, "list forbidden words")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, forbiddenWordView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"words": out, "total": total, "page": page})
}

// Create adds a word to a scope.
func (h *ForbiddenWordHandler) Create(c *gin.Context) {
	var body struct {
		Word        string `json:"word"`
		Application string `json:"application"`
		Level       int    `json:"level"`
		Remark      string `json:"remark"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Word) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing word"})
		return
	}
	if strings.TrimSpace(body.Application) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing application"})
		return
	}

	row, errAdd := h.words.Add(c.Request.Context(), body.Word, body.Application, body.Level, body.Remark, userID(c))
	if errAdd != nil {
		respondStoreError(c, errAdd, "add forbidden word")
		return
	}
	h.filter.Invalidate(row.Application)
	c.JSON(http.StatusCreated, forbiddenWordView(row))
}

// Update changes a word entry.
func (h *ForbiddenWordHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Word   *string `json:"word"`
		Level  *int    `json:"level"`
		Remark *string `json:"remark"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Word != nil && strings.TrimSpace(*body.Word) != "" {
		updates["word"] = strings.TrimSpace(*body.Word)
	}
	if body.Level != nil {
		updates["level"] = *body.Level
	}
	if body.Remark != nil {
		updates["remark"] = *body.Remark
	}

	row, errUpdate := h.words.Update(c.Request.Context(), id, updates)
	if errUpdate != nil {
		respondStoreError(c, errUpdate, "update forbidden word")
		return
	}
	h.filter.Invalidate(row.Application)
	c.JSON(http.StatusOK, forbiddenWordView(row))
}

// Delete removes a word entry.
func (h *ForbiddenWordHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, errDelete := h.words.Delete(c.Request.Context(), id)
	if errDelete != nil {
		respondStoreError(c, errDelete, "delete forbidden word")
		return
	}
	h.filter.Invalidate(row.Application)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Detections returns one page of the detection log.
func (h *ForbiddenWordHandler) Detections(c *gin.Context) {
	page, pageSize := pageParams(c)
	rows, total, errList := h.words.Detections(c.Request.Context(), c.Query("application"), page, pageSize)
	if errList != nil {
		respondStoreError(c, errList, "list detections")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":             row.ID,
			"content_sample": row.ContentSample,
			"detected_words": jsonColumn(row.DetectedWords),
			"application":    row.Application,
			"detection_time": row.DetectionTime,
		})
	}
	c.JSON(http.StatusOK, gin.H{"detections": out, "total": total, "page": page})
}

// Check runs a scope's filter over arbitrary content.
func (h *ForbiddenWordHandler) Check(c *gin.Context) {
	var body struct {
		Content     string `json:"content"`
		Application string `json:"application"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Application) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing application"})
		return
	}

	passed, matched, errCheck := h.filter.Check(c.Request.Context(), body.Content, body.Application)
	if errCheck != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"passed": passed, "forbidden_words": matched})
}
