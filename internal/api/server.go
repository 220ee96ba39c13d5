package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bellaleprasann20/Github-Clone/internal/config"
	"github.com/bellaleprasann20/Github-Clone/internal/services"
)

// NewRouter wires every service and route. Kept separate from StartServer so
// tests can drive the router directly.
func NewRouter(cfg *config.Config, db *gorm.DB, storage *services.StorageService, log *zap.Logger) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Length", "Authorization"},
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authService := services.NewAuthService(db, log, cfg.JWTSecret)
	userService := services.NewUserService(db, log)
	fileService := services.NewFileService(db, log)
	accessService := services.NewAccessService(db, log)
	repoService := services.NewRepoService(db, fileService, log)
	commitService := services.NewCommitService(db, log)

	authHandler := NewAuthHandler(authService, userService, log)
	userHandler := NewUserHandler(userService, storage, log)
	repoHandler := NewRepoHandler(repoService, fileService, accessService, log)
	commitHandler := NewCommitHandler(commitService, repoService, accessService, log)

	required := authService.RequireAuth()
	optional := authService.OptionalAuth()

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", required, authHandler.Me)
	}

	users := router.Group("/api/users")
	{
		users.GET("/:username", userHandler.GetByUsername)
		users.GET("/:username/:sub", userHandler.GetSubresource)
		users.PUT("/profile", required, userHandler.UpdateProfile)
		// Static "avatar" cannot sit next to ":username" in gin's tree,
		// so the single-segment POST dispatches on the parameter.
		users.POST("/:username", required, func(c *gin.Context) {
			if c.Param("username") == "avatar" {
				userHandler.UploadAvatar(c)
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		})
		users.POST("/:username/follow", required, userHandler.Follow)
		users.DELETE("/:username/follow", required, userHandler.Unfollow)
	}

	repos := router.Group("/api/repos")
	{
		repos.GET("", optional, repoHandler.List)
		repos.GET("/:id", optional, repoHandler.GetByID)
		repos.GET("/:id/:sub", optional, repoHandler.GetSubresource)
		repos.POST("", required, repoHandler.Create)
		repos.PUT("/:id", required, repoHandler.Update)
		repos.DELETE("/:id", required, repoHandler.Delete)
		repos.POST("/:id/star", required, repoHandler.Star)
		repos.POST("/:id/watch", required, repoHandler.Watch)
		repos.POST("/:id/fork", required, repoHandler.Fork)
	}

	commits := router.Group("/api/commits")
	{
		commits.GET("/:id", optional, commitHandler.ListByRepository)
		commits.GET("/:id/:sub", optional, commitHandler.GetSubresource)
		commits.POST("", required, commitHandler.Append)
		commits.DELETE("/:id", required, commitHandler.Delete)
	}

	return router
}

// StartServer runs the HTTP server until it fails.
func StartServer(cfg *config.Config, db *gorm.DB, storage *services.StorageService, log *zap.Logger) {
	if log == nil {
		panic("Logger is required but not provided")
	}

	log.Info("Validating server configuration")
	if cfg.ServerPort == "" {
		log.Fatal("Server port must be specified in configuration")
	}
	log.Info("Server configuration validated", zap.String("server_port", cfg.ServerPort))

	router := NewRouter(cfg, db, storage, log)

	log.Info("Starting server", zap.String("port", cfg.ServerPort))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
