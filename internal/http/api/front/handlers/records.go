package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/store"
)

// RecordHandler manages generation and classification history endpoints.
type RecordHandler struct {
	generations     *store.GenerationRecordStore
	classifications *store.ClassificationRecordStore
}

// NewRecordHandler constructs a RecordHandler.
func NewRecordHandler(generations *store.GenerationRecordStore, classifications *store.ClassificationRecordStore) *RecordHandler {
	return &RecordHandler{generations: generations, classifications: classifications}
}

// pageParams parses page/page_size query parameters.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

// jsonColumn decodes a JSON column for the response, falling back to nil.
func jsonColumn(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// generationRecordView shapes a generation record for API responses.
func generationRecordView(row *models.GenerationRecord) gin.H {
	return gin.H{
		"id":         row.ID,
		"request_id": row.RequestID,
		"config_id":  row.ConfigID,

		"prompt":     row.Prompt,
		"image_urls": jsonColumn(row.ImageURLs),

		"title":   row.Title,
		"content": row.Content,
		"tags":    jsonColumn(row.Tags),

		"status":        row.Status,
		"error_message": row.ErrorMessage,

		"tokens_used": row.TokensUsed,
		"duration_ms": row.DurationMs,

		"provider_type": row.ProviderType,
		"model_id":      row.ModelID,

		"user_rating":   row.UserRating,
		"user_feedback": row.UserFeedback,
		"created_at":    row.CreatedAt,
	}
}

// classificationRecordView shapes a classification record for API responses.
func classificationRecordView(row *models.ClassificationRecord) gin.H {
	return gin.H{
		"id":         row.ID,
		"request_id": row.RequestID,
		"config_id":  row.ConfigID,

		"image_url":  row.ImageURL,
		"categories": jsonColumn(row.Categories),

		"category_id":   row.CategoryID,
		"category_name": row.CategoryName,
		"confidence":    row.Confidence,
		"reasoning":     row.Reasoning,

		"status":        row.Status,
		"error_message": row.ErrorMessage,

		"tokens_used": row.TokensUsed,
		"duration_ms": row.DurationMs,

		"provider_type": row.ProviderType,
		"model_id":      row.ModelID,

		"user_rating":   row.UserRating,
		"user_feedback": row.UserFeedback,
		"created_at":    row.CreatedAt,
	}
}

// ListGenerations returns one page of the owner's generation records.
func (h *RecordHandler) ListGenerations(c *gin.Context) {
	page, pageSize := pageParams(c)
	rows, total, errList := h.generations.ListByUser(c.Request.Context(), userID(c), page, pageSize)
	if errList != nil {
		respondStoreError(c, errList, "list records")
		return
	}
	views := make([]gin.H, 0, len(rows))
	for i := range rows {
		views = append(views, generationRecordView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"records": views, "total": total, "page": page})
}

// GetGeneration returns one generation record.
func (h *RecordHandler) GetGeneration(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, errFind := h.generations.GetByID(c.Request.Context(), userID(c), id)
	if errFind != nil {
		respondStoreError(c, errFind, "load record")
		return
	}
	c.JSON(http.StatusOK, generationRecordView(row))
}

// DeleteGeneration removes one generation record.
func (h *RecordHandler) DeleteGeneration(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errDelete := h.generations.Delete(c.Request.Context(), userID(c), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ratingBody is the rating request payload.
type ratingBody struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// RateGeneration stores a rating on a generation record.
func (h *RecordHandler) RateGeneration(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body ratingBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}
	if errRate := h.generations.Rate(c.Request.Context(), userID(c), id, body.Rating, body.Feedback); errRate != nil {
		respondStoreError(c, errRate, "rate record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListClassifications returns one page of the owner's classification records.
func (h *RecordHandler) ListClassifications(c *gin.Context) {
	page, pageSize := pageParams(c)
	rows, total, errList := h.classifications.ListByUser(c.Request.Context(), userID(c), page, pageSize)
	if errList != nil {
		respondStoreError(c, errList, "list records")
		return
	}
	views := make([]gin.H, 0, len(rows))
	for i := range rows {
		views = append(views, classificationRecordView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"records": views, "total": total, "page": page})
}

// GetClassification returns one classification record.
func (h *RecordHandler) GetClassification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, errFind := h.classifications.GetByID(c.Request.Context(), userID(c), id)
	if errFind != nil {
		respondStoreError(c, errFind, "load record")
		return
	}
	c.JSON(http.StatusOK, classificationRecordView(row))
}

// DeleteClassification removes one classification record.
func (h *RecordHandler) DeleteClassification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errDelete := h.classifications.Delete(c.Request.Context(), userID(c), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RateClassification stores a rating on a classification record.
func (h *RecordHandler) RateClassification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body ratingBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Rating < 1 || body.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}
	if errRate := h.classifications.Rate(c.Request.Context(), userID(c), id, body.Rating, body.Feedback); errRate != nil {
		respondStoreError(c, errRate, "rate record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
