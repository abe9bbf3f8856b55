package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/config"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/controllers"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/middleware"
	"github.com/UTSC-CSCC09-Programming-on-the-Web/a4-OrhanBC/utils"
)

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
	// File-based zap access log; test mode and logger failures fall back to defaults
	if cfg.GinMode != "test" && cfg.GinPath != "" {
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
		AllowHeaders:     []string{"Authorization", "Content-Type"},
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

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	imageController := controllers.NewImageController(db)
	commentController := controllers.NewCommentController(db)

	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(db), authController.Logout)

	usersGroup := r.Group("/api/users")
	usersGroup.GET("", middleware.ValidatePagination(20), userController.ListUsers)
	usersGroup.GET("/:id", middleware.ValidateIDParam(), userController.GetUser)
	usersGroup.GET("/:id/images", middleware.ValidateIDParam(), middleware.ValidatePagination(1), userController.ListUserImages)
	usersGroup.POST("/:id/images", middleware.ValidateIDParam(), middleware.AuthRequired(db), userController.UploadImage)

	imagesGroup := r.Group("/api/images")
	imagesGroup.GET("/:id", middleware.ValidateIDParam(), imageController.GetImage)
	imagesGroup.GET("/:id/file", middleware.ValidateIDParam(), imageController.GetImageFile)
	imagesGroup.GET("/:id/comments", middleware.ValidateIDParam(), middleware.ValidatePagination(10), imageController.ListImageComments)
	imagesGroup.POST("/:id/comments", middleware.ValidateIDParam(), middleware.AuthRequired(db), imageController.CreateComment)

	commentsGroup := r.Group("/api/comments")
	commentsGroup.GET("", middleware.AuthRequired(db), commentController.ListComments)
	commentsGroup.GET("/:id", middleware.AuthRequired(db), middleware.ValidateIDParam(), commentController.GetComment)
	// Id validation runs before auth here, so a malformed id yields 400 even without a token
	commentsGroup.DELETE("/:id", middleware.ValidateIDParam(), middleware.AuthRequired(db), commentController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, "API route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
