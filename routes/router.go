package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/airings/pagecomments/config"
	"github.com/airings/pagecomments/controllers"
	"github.com/airings/pagecomments/middleware"
	"github.com/airings/pagecomments/utils"
)

const maxBodyBytes = 1 << 20 // 1 MiB request body cap

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(utils.Ginzap(utils.Logger))
	r.Use(utils.RecoveryWithZap(utils.Logger))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"Content-Length", "X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", func(ctx *gin.Context) {
		utils.OK(ctx, gin.H{"status": "ok"})
	})

	commentController := controllers.NewCommentController(db)

	api := r.Group("/api")
	api.GET("/comments", commentController.List)
	api.POST("/comments", commentController.Create)
	// The id may arrive as a trailing path segment or as ?id=; both routes
	// land on the same handler, which prefers the path form.
	api.PUT("/comments", commentController.Update)
	api.PUT("/comments/:id", commentController.Update)
	api.DELETE("/comments", commentController.Delete)
	api.DELETE("/comments/:id", commentController.Delete)

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(ctx *gin.Context) {
		ctx.Header("Allow", "GET, POST, PUT, DELETE")
		utils.Fail(ctx, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	r.NoRoute(func(ctx *gin.Context) {
		utils.Fail(ctx, http.StatusNotFound, "api route not found")
	})

	return r
}
