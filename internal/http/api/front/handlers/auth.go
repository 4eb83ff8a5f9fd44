package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redink-ai/redink/internal/config"
	"github.com/redink-ai/redink/internal/security"
	"github.com/redink-ai/redink/internal/store"
)

// AuthHandler manages login and password endpoints.
type AuthHandler struct {
	users  *store.UserStore
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *store.UserStore, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{users: users, jwtCfg: jwtCfg}
}

// Login verifies credentials and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username or password"})
		return
	}

	user, errFind := h.users.GetByUsername(c.Request.Context(), username)
	if errFind != nil || !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
		return
	}

	token, errIssue := security.IssueUserToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, user.ID, user.Username)
	if errIssue != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"name":     user.Name,
		},
	})
}

// Profile returns the authenticated user's account details.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, errFind := h.users.GetByID(c.Request.Context(), userID(c))
	if errFind != nil {
		respondStoreError(c, errFind, "load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"name":       user.Name,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

// ChangePassword verifies the old password and stores a new hash.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var body struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new password too short"})
		return
	}

	user, errFind := h.users.GetByID(c.Request.Context(), userID(c))
	if errFind != nil {
		respondStoreError(c, errFind, "load user")
		return
	}
	if !security.CheckPassword(user.Password, body.OldPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "old password incorrect"})
		return
	}

	hash, errHash := security.HashPassword(body.NewPassword)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}
	if errUpdate := h.users.UpdatePassword(c.Request.Context(), user.ID, hash); errUpdate != nil {
		respondStoreError(c, errUpdate, "update password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
