// Package app wires the database, safety filter, pipelines and HTTP
// routers into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/config"
	"github.com/redink-ai/redink/internal/db"
	"github.com/redink-ai/redink/internal/http/api/external"
	"github.com/redink-ai/redink/internal/http/api/front"
	"github.com/redink-ai/redink/internal/pipeline"
	"github.com/redink-ai/redink/internal/ratelimit"
	"github.com/redink-ai/redink/internal/safety"
	"github.com/redink-ai/redink/internal/store"
)

// shutdownTimeout bounds the drain period after the context is cancelled.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server with database-backed components and runs
// until the context is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	jwtCfg, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return fmt.Errorf("app: jwt secret is not configured (set %s or jwt.secret)", config.EnvJWTSecret)
	}

	if errSeed := EnsureAdminUser(ctx, conn); errSeed != nil {
		return errSeed
	}

	redisCfg, errRedis := config.LoadRedisConfig(configPath)
	if errRedis != nil {
		redisCfg = config.RedisConfig{}
	}
	filter := buildFilter(redisCfg, conn)
	limiter := ratelimit.NewManager(redisCfg, nil, nil)
	engine := buildEngine(conn, jwtCfg, filter, limiter)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("app: shutdown: %w", errShutdown)
	}
	log.Info("server stopped")
	return nil
}

// buildFilter assembles the safety filter, preferring the shared Redis
// cache when one is configured.
func buildFilter(redisCfg config.RedisConfig, conn *gorm.DB) *safety.Filter {
	words := store.NewForbiddenWordStore(conn)

	if strings.TrimSpace(redisCfg.Addr) == "" {
		return safety.NewFilter(words, nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	log.WithField("addr", redisCfg.Addr).Info("using redis safety cache")
	return safety.NewFilter(words, safety.NewRedisCache(client, "", safety.DefaultTTL))
}

// buildEngine assembles the gin router with both API surfaces mounted.
func buildEngine(conn *gorm.DB, jwtCfg config.JWTConfig, filter *safety.Filter, limiter *ratelimit.Manager) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	generation := pipeline.NewGenerationService(
		store.NewGenerationConfigStore(conn),
		store.NewCredentialStore(conn),
		store.NewGenerationRecordStore(conn),
		filter,
	)
	classification := pipeline.NewClassificationService(
		store.NewClassificationConfigStore(conn),
		store.NewCredentialStore(conn),
		store.NewClassificationRecordStore(conn),
	)

	front.RegisterRoutes(engine, front.Deps{
		DB:             conn,
		JWT:            jwtCfg,
		Filter:         filter,
		Generation:     generation,
		Classification: classification,
	})
	external.RegisterRoutes(engine, external.Deps{
		DB:             conn,
		Filter:         filter,
		Limiter:        limiter,
		Generation:     generation,
		Classification: classification,
	})
	return engine
}

// requestLogger logs one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}).Info("request")
	}
}
