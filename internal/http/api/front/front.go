// Package front registers the JWT-protected user-facing API.
package front

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/config"
	"github.com/redink-ai/redink/internal/http/api/front/handlers"
	"github.com/redink-ai/redink/internal/pipeline"
	"github.com/redink-ai/redink/internal/safety"
	"github.com/redink-ai/redink/internal/security"
	"github.com/redink-ai/redink/internal/store"
	"github.com/redink-ai/redink/internal/usage"
)

// Deps carries the shared components the front API needs.
type Deps struct {
	DB     *gorm.DB
	JWT    config.JWTConfig
	Filter *safety.Filter

	Generation     *pipeline.GenerationService
	Classification *pipeline.ClassificationService
}

// RegisterRoutes mounts the front API under /api.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	users := store.NewUserStore(deps.DB)

	authHandler := handlers.NewAuthHandler(users, deps.JWT)
	credentialHandler := handlers.NewCredentialHandler(store.NewCredentialStore(deps.DB))
	generationConfigHandler := handlers.NewGenerationConfigHandler(store.NewGenerationConfigStore(deps.DB))
	classificationConfigHandler := handlers.NewClassificationConfigHandler(store.NewClassificationConfigStore(deps.DB))
	recordHandler := handlers.NewRecordHandler(store.NewGenerationRecordStore(deps.DB), store.NewClassificationRecordStore(deps.DB))
	appKeyHandler := handlers.NewAppKeyHandler(store.NewAppKeyStore(deps.DB))
	wordHandler := handlers.NewForbiddenWordHandler(store.NewForbiddenWordStore(deps.DB), deps.Filter)
	pipelineHandler := handlers.NewPipelineHandler(deps.Generation, deps.Classification)
	usageHandler := handlers.NewUsageHandler(usage.NewService(deps.DB))

	api := r.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(userAuthMiddleware(deps.DB, deps.JWT))
	{
		authed.GET("/user/profile", authHandler.Profile)
		authed.POST("/user/password", authHandler.ChangePassword)

		authed.GET("/credentials", credentialHandler.List)
		authed.POST("/credentials", credentialHandler.Create)
		authed.GET("/credentials/:id", credentialHandler.Get)
		authed.PUT("/credentials/:id", credentialHandler.Update)
		authed.DELETE("/credentials/:id", credentialHandler.Delete)
		authed.POST("/credentials/:id/default", credentialHandler.SetDefault)

		authed.GET("/configs/generation", generationConfigHandler.List)
		authed.POST("/configs/generation", generationConfigHandler.Create)
		authed.GET("/configs/generation/:id", generationConfigHandler.Get)
		authed.PUT("/configs/generation/:id", generationConfigHandler.Update)
		authed.DELETE("/configs/generation/:id", generationConfigHandler.Delete)
		authed.POST("/configs/generation/:id/default", generationConfigHandler.SetDefault)

		authed.GET("/configs/classification", classificationConfigHandler.List)
		authed.POST("/configs/classification", classificationConfigHandler.Create)
		authed.GET("/configs/classification/:id", classificationConfigHandler.Get)
		authed.PUT("/configs/classification/:id", classificationConfigHandler.Update)
		authed.DELETE("/configs/classification/:id", classificationConfigHandler.Delete)
		authed.POST("/configs/classification/:id/default", classificationConfigHandler.SetDefault)

		authed.POST("/generate", pipelineHandler.Generate)
		authed.POST("/classify", pipelineHandler.Classify)

		authed.GET("/records/generation", recordHandler.ListGenerations)
		authed.GET("/records/generation/:id", recordHandler.GetGeneration)
		authed.DELETE("/records/generation/:id", recordHandler.DeleteGeneration)
		authed.POST("/records/generation/:id/rating", recordHandler.RateGeneration)

		authed.GET("/records/classification", recordHandler.ListClassifications)
		authed.GET("/records/classification/:id", recordHandler.GetClassification)
		authed.DELETE("/records/classification/:id", recordHandler.DeleteClassification)
		authed.POST("/records/classification/:id/rating", recordHandler.RateClassification)

		authed.GET("/app-keys", appKeyHandler.List)
		authed.POST("/app-keys", appKeyHandler.Create)
		authed.DELETE("/app-keys/:id", appKeyHandler.Delete)
		authed.POST("/app-keys/:id/disable", appKeyHandler.Disable)

		authed.GET("/forbidden-words", wordHandler.List)
		authed.POST("/forbidden-words", wordHandler.Create)
		authed.PUT("/forbidden-words/:id", wordHandler.Update)
		authed.DELETE("/forbidden-words/:id", wordHandler.Delete)
		authed.GET("/forbidden-words/detections", wordHandler.Detections)
		authed.POST("/forbidden-words/check", wordHandler.Check)

		authed.GET("/usage/report", usageHandler.Report)
		authed.GET("/usage/daily", usageHandler.Daily)
	}
}

// userAuthMiddleware validates user JWTs and loads user context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	users := store.NewUserStore(db)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, errFind := users.GetByID(c.Request.Context(), claims.UserID)
		if errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user disabled"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}
