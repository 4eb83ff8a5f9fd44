package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/security"
	"github.com/redink-ai/redink/internal/store"
)

// AppKeyHandler manages external application key endpoints.
type AppKeyHandler struct {
	keys *store.AppKeyStore
}

// NewAppKeyHandler constructs an AppKeyHandler.
func NewAppKeyHandler(keys *store.AppKeyStore) *AppKeyHandler {
	return &AppKeyHandler{keys: keys}
}

// Create issues a new application key. The raw key appears only in this
// response; the database keeps its hash.
func (h *AppKeyHandler) Create(c *gin.Context) {
	var body struct {
		Name        string `json:"name"`
		Application string `json:"application"`
		RateLimit   int    `json:"rate_limit"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	application := strings.TrimSpace(body.Application)
	if application == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing application"})
		return
	}

	raw, errGenerate := security.GenerateAppKey()
	if errGenerate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate app key failed"})
		return
	}
	if body.RateLimit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit must not be negative"})
		return
	}
	row := models.AppKey{
		UserID:      userID(c),
		Name:        name,
		Application: application,
		KeyHash:     security.HashAppKey(raw),
		KeyPrefix:   security.KeyPrefix(raw),
		Active:      true,
		RateLimit:   body.RateLimit,
	}
	if errCreate := h.keys.Create(c.Request.Context(), &row); errCreate != nil {
		respondStoreError(c, errCreate, "create app key")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          row.ID,
		"name":        row.Name,
		"application": row.Application,
		"key":         raw,
		"key_prefix":  row.KeyPrefix,
		"rate_limit":  row.RateLimit,
	})
}

// List returns the owner's keys without raw key material.
func (h *AppKeyHandler) List(c *gin.Context) {
	rows, errList := h.keys.List(c.Request.Context(), userID(c))
	if errList != nil {
		respondStoreError(c, errList, "list app keys")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":           row.ID,
			"name":         row.Name,
			"application":  row.Application,
			"key_prefix":   row.KeyPrefix,
			"active":       row.Active,
			"rate_limit":   row.RateLimit,
			"last_used_at": row.LastUsedAt,
			"created_at":   row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"app_keys": out})
}

// Disable deactivates a key.
func (h *AppKeyHandler) Disable(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errDisable := h.keys.Disable(c.Request.Context(), userID(c), id); errDisable != nil {
		respondStoreError(c, errDisable, "disable app key")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes a key.
func (h *AppKeyHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errDelete := h.keys.Delete(c.Request.Context(), userID(c), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete app key")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
