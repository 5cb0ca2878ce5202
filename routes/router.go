package routes

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gsinghjay/gpt-character-gen/config"
	"github.com/gsinghjay/gpt-character-gen/controllers"
	"github.com/gsinghjay/gpt-character-gen/middleware"
	"github.com/gsinghjay/gpt-character-gen/utils"
)

// SetupRouter wires routes, middlewares, and the character controller.
func SetupRouter(cfg config.AppConfig, characterController *controllers.CharacterController) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace the default console logger with a file-based zap logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err == nil {
			r.Use(utils.Ginzap(gl, time.RFC3339, true))
			r.Use(utils.RecoveryWithZap(gl, false))
		} else {
			r.Use(gin.Recovery())
		}
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", middleware.APIKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", cfg.StaticDir)

	r.GET("/", func(ctx *gin.Context) {
		ctx.File(filepath.Join(cfg.StaticDir, "index.html"))
	})

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.APIKeyRequired(cfg.APIKey))

	charactersGroup := api.Group("/characters")
	charactersGroup.POST("", characterController.Create)
	charactersGroup.GET("", characterController.List)
	charactersGroup.GET("/:id", characterController.Get)
	charactersGroup.POST("/:id/variations", characterController.AddVariation)
	charactersGroup.DELETE("/:id", characterController.Delete)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.Status(http.StatusNotFound)
	})

	return r
}
