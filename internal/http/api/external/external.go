// Package external registers the app-key-protected API used by other
// products, such as mini-program backends.
package external

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/pipeline"
	"github.com/redink-ai/redink/internal/ratelimit"
	"github.com/redink-ai/redink/internal/safety"
	"github.com/redink-ai/redink/internal/security"
	"github.com/redink-ai/redink/internal/store"
)

// Context keys set by the app key middleware.
const (
	ctxUserID      = "externalUserID"
	ctxAppKeyID    = "externalAppKeyID"
	ctxApplication = "externalApplication"
)

// Deps carries the shared components the external API needs.
type Deps struct {
	DB      *gorm.DB
	Filter  *safety.Filter
	Limiter *ratelimit.Manager

	Generation     *pipeline.GenerationService
	Classification *pipeline.ClassificationService
}

// RegisterRoutes mounts the external API under /external/v1.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	keys := store.NewAppKeyStore(deps.DB)
	handler := &Handler{deps: deps}

	group := r.Group("/external/v1")
	group.Use(appKeyAuthMiddleware(keys, deps.Limiter))
	{
		group.POST("/generate", handler.Generate)
		group.POST("/classify", handler.Classify)
		group.POST("/check-content", handler.CheckContent)
	}
}

// appKeyAuthMiddleware authenticates requests by application key. The key
// is accepted from X-App-Key or an Authorization bearer header. Keys with a
// non-zero RateLimit are throttled per second after authentication.
func appKeyAuthMiddleware(keys *store.AppKeyStore, limiter *ratelimit.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("X-App-Key"))
		if raw == "" {
			authHeader := c.GetHeader("Authorization")
			if trimmed := strings.TrimPrefix(authHeader, "Bearer "); trimmed != authHeader {
				raw = strings.TrimSpace(trimmed)
			}
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing app key"})
			return
		}

		key, errFind := keys.GetByHash(c.Request.Context(), security.HashAppKey(raw))
		if errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid app key"})
			return
		}
		if key.RateLimit > 0 && limiter != nil {
			result, errAllow := limiter.Allow(c.Request.Context(), ratelimit.KeyForAppKey(key.ID), key.RateLimit)
			if errAllow != nil {
				log.WithError(errAllow).Warn("external: rate limit check failed")
			} else if !result.Allowed {
				c.Header("Retry-After", "1")
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
				return
			}
		}

		if errTouch := keys.TouchLastUsed(c.Request.Context(), key.ID); errTouch != nil {
			log.WithError(errTouch).Warn("external: failed to record key usage")
		}

		c.Set(ctxUserID, key.UserID)
		c.Set(ctxAppKeyID, key.ID)
		c.Set(ctxApplication, key.Application)
		c.Next()
	}
}

func keyContext(c *gin.Context) (userID uint64, appKeyID uint64, application string) {
	if v, ok := c.Get(ctxUserID); ok {
		userID, _ = v.(uint64)
	}
	if v, ok := c.Get(ctxAppKeyID); ok {
		appKeyID, _ = v.(uint64)
	}
	if v, ok := c.Get(ctxApplication); ok {
		application, _ = v.(string)
	}
	return userID, appKeyID, application
}
