package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/store"
)

// GenerationConfigHandler manages copy-generation config endpoints.
type GenerationConfigHandler struct {
	configs *store.GenerationConfigStore
}

// NewGenerationConfigHandler constructs a GenerationConfigHandler.
func NewGenerationConfigHandler(configs *store.GenerationConfigStore) *GenerationConfigHandler {
	return &GenerationConfigHandler{configs: configs}
}

// generationConfigBody is the create/update request payload.
type generationConfigBody struct {
	Name         *string `json:"name"`
	ProviderType *string `json:"provider_type"`
	CredentialID *uint64 `json:"credential_id"`

	SystemPrompt       *string `json:"system_prompt"`
	UserPromptTemplate *string `json:"user_prompt_template"`

	ModelID       *string `json:"model_id"`
	VisionModelID *string `json:"vision_model_id"`

	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`

	TitleLength   *int  `json:"title_length"`
	ContentLength *int  `json:"content_length"`
	TagsCount     *int  `json:"tags_count"`
	IncludeEmojis *bool `json:"include_emojis"`

	IsDefault *bool `json:"is_default"`
	IsActive  *bool `json:"is_active"`
}

// generationConfigView shapes a config for API responses.
func generationConfigView(row *models.GenerationConfig) gin.H {
	return gin.H{
		"id":            row.ID,
		"name":          row.Name,
		"provider_type": row.ProviderType,
		"credential_id": row.CredentialID,

		"system_prompt":        row.SystemPrompt,
		"user_prompt_template": row.UserPromptTemplate,

		"model_id":        row.ModelID,
		"vision_model_id": row.VisionModelID,

		"temperature": row.Temperature,
		"max_tokens":  row.MaxTokens,

		"title_length":   row.TitleLength,
		"content_length": row.ContentLength,
		"tags_count":     row.TagsCount,
		"include_emojis": row.IncludeEmojis,

		"is_default": row.IsDefault,
		"is_active":  row.IsActive,
		"created_at": row.CreatedAt,
		"updated_at": row.UpdatedAt,
	}
}

// List returns the owner's generation configs.
func (h *GenerationConfigHandler) List(c *gin.Context) {
	rows, errList := h.configs.List(c.Request.Context(), userID(c))
	if errList != nil {
		respondStoreError(c, errList, "list configs")
		return
	}
	views := make([]gin.H, 0, len(rows))
	for i := range rows {
		views = append(views, generationConfigView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"configs": views})
}

// Get returns one generation config.
func (h *GenerationConfigHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, errFind := h.configs.GetByID(c.Request.Context(), userID(c), id)
	if errFind != nil {
		respondStoreError(c, errFind, "load config")
		return
	}
	c.JSON(http.StatusOK, generationConfigView(row))
}

// Create stores a new generation config.
func (h *GenerationConfigHandler) Create(c *gin.Context) {
	var body generationConfigBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	if body.ProviderType == nil || !supportedProviderType(strings.TrimSpace(*body.ProviderType)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or unsupported provider_type"})
		return
	}

	row := models.GenerationConfig{
		UserID:       userID(c),
		Name:         strings.TrimSpace(*body.Name),
		ProviderType: strings.TrimSpace(*body.ProviderType),
		CredentialID: body.CredentialID,
		Temperature:  0.7,
		MaxTokens:    800,
		TitleLength:  50,
		ContentLength: 1000,
		TagsCount:     5,
		IncludeEmojis: true,
		IsActive:      true,
	}
	applyGenerationConfigBody(&row, &body)

	if errCreate := h.configs.Create(c.Request.Context(), &row); errCreate != nil {
		respondStoreError(c, errCreate, "create config")
		return
	}
	c.JSON(http.StatusCreated, generationConfigView(&row))
}

// Update applies a partial update to a generation config.
func (h *GenerationConfigHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body generationConfigBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	setString(updates, "name", body.Name)
	setString(updates, "system_prompt", body.SystemPrompt)
	setString(updates, "user_prompt_template", body.UserPromptTemplate)
	setString(updates, "model_id", body.ModelID)
	setString(updates, "vision_model_id", body.VisionModelID)
	if body.CredentialID != nil {
		updates["credential_id"] = *body.CredentialID
	}
	if body.Temperature != nil {
		updates["temperature"] = *body.Temperature
	}
	if body.MaxTokens != nil {
		updates["max_tokens"] = *body.MaxTokens
	}
	if body.TitleLength != nil {
		updates["title_length"] = *body.TitleLength
	}
	if body.ContentLength != nil {
		updates["content_length"] = *body.ContentLength
	}
	if body.TagsCount != nil {
		updates["tags_count"] = *body.TagsCount
	}
	if body.IncludeEmojis != nil {
		updates["include_emojis"] = *body.IncludeEmojis
	}
	if body.IsDefault != nil {
		updates["is_default"] = *body.IsDefault
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}

	row, errUpdate := h.configs.Update(c.Request.Context(), userID(c), id, updates)
	if errUpdate != nil {
		respondStoreError(c, errUpdate, "update config")
		return
	}
	c.JSON(http.StatusOK, generationConfigView(row))
}

// SetDefault promotes a generation config to the owner's default.
func (h *GenerationConfigHandler) SetDefault(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errSet := h.configs.SetDefault(c.Request.Context(), userID(c), id); errSet != nil {
		respondStoreError(c, errSet, "set default config")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes a generation config.
func (h *GenerationConfigHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errDelete := h.configs.Delete(c.Request.Context(), userID(c), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete config")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func applyGenerationConfigBody(row *models.GenerationConfig, body *generationConfigBody) {
	if body.SystemPrompt != nil {
		row.SystemPrompt = *body.SystemPrompt
	}
	if body.UserPromptTemplate != nil {
		row.UserPromptTemplate = *body.UserPromptTemplate
	}
	if body.ModelID != nil {
		row.ModelID = strings.TrimSpace(*body.ModelID)
	}
	if body.VisionModelID != nil {
		row.VisionModelID = strings.TrimSpace(*body.VisionModelID)
	}
	if body.Temperature != nil {
		row.Temperature = *body.Temperature
	}
	if body.MaxTokens != nil {
		row.MaxTokens = *body.MaxTokens
	}
	if body.TitleLength != nil {
		row.TitleLength = *body.TitleLength
	}
	if body.ContentLength != nil {
		row.ContentLength = *body.ContentLength
	}
	if body.TagsCount != nil {
		row.TagsCount = *body.TagsCount
	}
	if body.IncludeEmojis != nil {
		row.IncludeEmojis = *body.IncludeEmojis
	}
	if body.IsDefault != nil {
		row.IsDefault = *body.IsDefault
	}
	if body.IsActive != nil {
		row.IsActive = *body.IsActive
	}
}

// ClassificationConfigHandler manages image-classification config endpoints.
type ClassificationConfigHandler struct {
	configs *store.ClassificationConfigStore
}

// NewClassificationConfigHandler constructs a ClassificationConfigHandler.
func NewClassificationConfigHandler(configs *store.ClassificationConfigStore) *ClassificationConfigHandler {
	return &ClassificationConfigHandler{configs: configs}
}

// classificationConfigBody is the create/update request payload.
type classificationConfigBody struct {
	Name         *string `json:"name"`
	ProviderType *string `json:"provider_type"`
	CredentialID *uint64 `json:"credential_id"`

	SystemPrompt *string  `json:"system_prompt"`
	ModelID      *string  `json:"model_id"`
	Temperature  *float64 `json:"temperature"`
	MaxTokens    *int     `json:"max_tokens"`

	IsDefault *bool `json:"is_default"`
	IsActive  *bool `json:"is_active"`
}

// classificationConfigView shapes a config for API responses.
func classificationConfigView(row *models.ClassificationConfig) gin.H {
	return gin.H{
		"id":            row.ID,
		"name":          row.Name,
		"provider_type": row.ProviderType,
		"credential_id": row.CredentialID,

		"system_prompt": row.SystemPrompt,
		"model_id":      row.ModelID,
		"temperature":   row.Temperature,
		"max_tokens":    row.MaxTokens,

		"is_default": row.IsDefault,
		"is_active":  row.IsActive,
		"created_at": row.CreatedAt,
		"updated_at": row.UpdatedAt,
	}
}

// List returns the owner's classification configs.
func (h *ClassificationConfigHandler) List(c *gin.Context) {
	rows, errList := h.configs.List(c.Request.Context(), userID(c))
	if errList != nil {
		respondStoreError(c, errList, "list configs")
		return
	}
	views := make([]gin.H, 0, len(rows))
	for i := range rows {
		views = append(views, classificationConfigView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"configs": views})
}

// Get returns one classification config.
func (h *ClassificationConfigHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, errFind := h.configs.GetByID(c.Request.Context(), userID(c), id)
	if errFind != nil {
		respondStoreError(c, errFind, "load config")
		return
	}
	c.JSON(http.StatusOK, classificationConfigView(row))
}

// Create stores a new classification config.
func (h *ClassificationConfigHandler) Create(c *gin.Context) {
	var body classificationConfigBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	if body.ProviderType == nil || !supportedProviderType(strings.TrimSpace(*body.ProviderType)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or unsupported provider_type"})
		return
	}

	row := models.ClassificationConfig{
		UserID:       userID(c),
		Name:         strings.TrimSpace(*body.Name),
		ProviderType: strings.TrimSpace(*body.ProviderType),
		CredentialID: body.CredentialID,
		Temperature:  0.2,
		MaxTokens:    2000,
		IsActive:     true,
	}
	if body.SystemPrompt != nil {
		row.SystemPrompt = *body.SystemPrompt
	}
	if body.ModelID != nil {
		row.ModelID = strings.TrimSpace(*body.ModelID)
	}
	if body.Temperature != nil {
		row.Temperature = *body.Temperature
	}
	if body.MaxTokens != nil {
		row.MaxTokens = *body.MaxTokens
	}
	if body.IsDefault != nil {
		row.IsDefault = *body.IsDefault
	}
	if body.IsActive != nil {
		row.IsActive = *body.IsActive
	}

	if errCreate := h.configs.Create(c.Request.Context(), &row); errCreate != nil {
		respondStoreError(c, errCreate, "create config")
		return
	}
	c.JSON(http.StatusCreated, classificationConfigView(&row))
}

// Update applies a partial update to a classification config.
func (h *ClassificationConfigHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body classificationConfigBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	setString(updates, "name", body.Name)
	setString(updates, "system_prompt", body.SystemPrompt)
	setString(updates, "model_id", body.ModelID)
	if body.CredentialID != nil {
		updates["credential_id"] = *body.CredentialID
	}
	if body.Temperature != nil {
		updates["temperature"] = *body.Temperature
	}
	if body.MaxTokens != nil {
		updates["max_tokens"] = *body.MaxTokens
	}
	if body.IsDefault != nil {
		updates["is_default"] = *body.IsDefault
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}

	row, errUpdate := h.configs.Update(c.Request.Context(), userID(c), id, updates)
	if errUpdate != nil {
		respondStoreError(c, errUpdate, "update config")
		return
	}
	c.JSON(http.StatusOK, classificationConfigView(row))
}

// SetDefault promotes a classification config to the owner's default.
func (h *ClassificationConfigHandler) SetDefault(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errSet := h.configs.SetDefault(c.Request.Context(), userID(c), id); errSet != nil {
		respondStoreError(c, errSet, "set default config")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes a classification config.
func (h *ClassificationConfigHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errDelete := h.configs.Delete(c.Request.Context(), userID(c), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete config")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
