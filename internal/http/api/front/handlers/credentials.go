package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/store"
)

// CredentialHandler manages provider credential endpoints.
type CredentialHandler struct {
	creds *store.CredentialStore
}

// NewCredentialHandler constructs a CredentialHandler.
func NewCredentialHandler(creds *store.CredentialStore) *CredentialHandler {
	return &CredentialHandler{creds: creds}
}

// credentialBody is the create/update request payload.
type credentialBody struct {
	Name         *string `json:"name"`
	ProviderType *string `json:"provider_type"`

	APIKey    *string `json:"api_key"`
	AppID     *string `json:"app_id"`
	AppKey    *string `json:"app_key"`
	AppSecret *string `json:"app_secret"`

	BaseURL    *string `json:"base_url"`
	APIVersion *string `json:"api_version"`
	Region     *string `json:"region"`

	RequestTimeout *int `json:"request_timeout"`
	MaxRetries     *int `json:"max_retries"`

	IsDefault *bool   `json:"is_default"`
	IsActive  *bool   `json:"is_active"`
	Remark    *string `json:"remark"`
}

// credentialView masks secrets before a credential leaves the API.
func credentialView(row *models.ProviderCredential) gin.H {
	return gin.H{
		"id":            row.ID,
		"name":          row.Name,
		"provider_type": row.ProviderType,
		"auth_shape":    models.AuthShapeForProvider(row.ProviderType),

		"api_key":    store.MaskSecret(row.APIKey),
		"app_id":     row.AppID,
		"app_key":    store.MaskSecret(row.AppKey),
		"app_secret": store.MaskSecret(row.AppSecret),

		"base_url":    row.BaseURL,
		"api_version": row.APIVersion,
		"region":      row.Region,

		"request_timeout": row.RequestTimeout,
		"max_retries":     row.MaxRetries,

		"is_default": row.IsDefault,
		"is_active":  row.IsActive,
		"remark":     row.Remark,
		"created_at": row.CreatedAt,
		"updated_at": row.UpdatedAt,
	}
}

// List returns the owner's credentials with secrets masked.
func (h *CredentialHandler) List(c *gin.Context) {
	rows, errList := h.creds.List(c.Request.Context(), userID(c), c.Query("provider_type"))
	if errList != nil {
		respondStoreError(c, errList, "list credentials")
		return
	}
	views := make([]gin.H, 0, len(rows))
	for i := range rows {
		views = append(views, credentialView(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"credentials": views})
}

// Get returns one credential with secrets masked.
func (h *CredentialHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, errFind := h.creds.GetByID(c.Request.Context(), userID(c), id)
	if errFind != nil {
		respondStoreError(c, errFind, "load credential")
		return
	}
	c.JSON(http.StatusOK, credentialView(row))
}

// Create stores a new credential.
func (h *CredentialHandler) Create(c *gin.Context) {
	var body credentialBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	if body.ProviderType == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing provider_type"})
		return
	}
	providerType := strings.TrimSpace(*body.ProviderType)
	if !supportedProviderType(providerType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported provider_type"})
		return
	}

	row := models.ProviderCredential{
		UserID:       userID(c),
		Name:         strings.TrimSpace(*body.Name),
		ProviderType: providerType,
		IsActive:     true,
	}
	applyCredentialBody(&row, &body)
	if errShape := checkAuthShape(&row); errShape != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errShape})
		return
	}

	if errCreate := h.creds.Create(c.Request.Context(), &row); errCreate != nil {
		respondStoreError(c, errCreate, "create credential")
		return
	}
	c.JSON(http.StatusCreated, credentialView(&row))
}

// Update applies a partial update to a credential.
func (h *CredentialHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body credentialBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	setString(updates, "name", body.Name)
	setString(updates, "api_key", body.APIKey)
	setString(updates, "app_id", body.AppID)
	setString(updates, "app_key", body.AppKey)
	setString(updates, "app_secret", body.AppSecret)
	setString(updates, "base_url", body.BaseURL)
	setString(updates, "api_version", body.APIVersion)
	setString(updates, "region", body.Region)
	setString(updates, "remark", body.Remark)
	if body.RequestTimeout != nil {
		updates["request_timeout"] = *body.RequestTimeout
	}
	if body.MaxRetries != nil {
		updates["max_retries"] = *body.MaxRetries
	}
	if body.IsDefault != nil {
		updates["is_default"] = *body.IsDefault
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}

	row, errUpdate := h.creds.Update(c.Request.Context(), userID(c), id, updates)
	if errUpdate != nil {
		respondStoreError(c, errUpdate, "update credential")
		return
	}
	c.JSON(http.StatusOK, credentialView(row))
}

// SetDefault promotes a credential to the owner's default for its provider type.
func (h *CredentialHandler) SetDefault(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errSet := h.creds.SetDefault(c.Request.Context(), userID(c), id); errSet != nil {
		respondStoreError(c, errSet, "set default credential")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes a credential.
func (h *CredentialHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if errDelete := h.creds.Delete(c.Request.Context(), userID(c), id); errDelete != nil {
		respondStoreError(c, errDelete, "delete credential")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func applyCredentialBody(row *models.ProviderCredential, body *credentialBody) {
	if body.APIKey != nil {
		row.APIKey = strings.TrimSpace(*body.APIKey)
	}
	if body.AppID != nil {
		row.AppID = strings.TrimSpace(*body.AppID)
	}
	if body.AppKey != nil {
		row.AppKey = strings.TrimSpace(*body.AppKey)
	}
	if body.AppSecret != nil {
		row.AppSecret = strings.TrimSpace(*body.AppSecret)
	}
	if body.BaseURL != nil {
		row.BaseURL = strings.TrimSpace(*body.BaseURL)
	}
	if body.APIVersion != nil {
		row.APIVersion = strings.TrimSpace(*body.APIVersion)
	}
	if body.Region != nil {
		row.Region = strings.TrimSpace(*body.Region)
	}
	if body.RequestTimeout != nil {
		row.RequestTimeout = *body.RequestTimeout
	}
	if body.MaxRetries != nil {
		row.MaxRetries = *body.MaxRetries
	}
	if body.IsDefault != nil {
		row.IsDefault = *body.IsDefault
	}
	if body.IsActive != nil {
		row.IsActive = *body.IsActive
	}
	if body.Remark != nil {
		row.Remark = *body.Remark
	}
}

// checkAuthShape validates that the fields the provider's auth shape needs
// are present; it returns an error message or "".
func checkAuthShape(row *models.ProviderCredential) string {
	switch models.AuthShapeForProvider(row.ProviderType) {
	case models.AuthShapeAPIKey:
		if row.APIKey == "" {
			return "missing api_key"
		}
	case models.AuthShapeKeySecret:
		if row.AppKey == "" || row.AppSecret == "" {
			return "missing app_key or app_secret"
		}
	case models.AuthShapeIDKeySecret:
		if row.APIKey == "" && (row.AppID == "" || row.AppKey == "" || row.AppSecret == "") {
			return "missing api_key or app_id/app_key/app_secret"
		}
	}
	return ""
}

func supportedProviderType(providerType string) bool {
	switch providerType {
	case models.ProviderOpenAI, models.ProviderClaude, models.ProviderVolcano:
		return true
	}
	return false
}

// pathID parses the :id path parameter, responding 400 itself on failure.
func pathID(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func setString(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = strings.TrimSpace(*value)
	}
}
