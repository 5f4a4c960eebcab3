package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-service/pkg/config"
	"blog-service/pkg/jwt"
	"blog-service/pkg/logger"
	"blog-service/pkg/middleware"
	"blog-service/pkg/queue"
	blogHTTP "blog-service/services/blog/internal/controller/http"
	"blog-service/services/blog/internal/repo/persistent"
	"blog-service/services/blog/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "blog-service/services/blog/docs" // Swagger docs
)

// NewRouter builds the gin engine with every blog route registered.
// redisClient and queueClient may be nil.
func NewRouter(cfg *config.Config, log *logger.Logger, db *gorm.DB, assets usecase.AssetStore, queueClient *queue.Client, redisClient *redis.Client) *gin.Engine {
	jwtService := jwt.NewService(cfg.JWTSecret)

	blogRepo := persistent.NewBlogRepository(db)

	// A nil *queue.Client must not become a non-nil interface.
	var notifier usecase.Notifier
	if queueClient != nil {
		notifier = queueClient
	}

	maxImageBytes := int64(cfg.MaxImageSizeMB) << 20
	blogUseCase := usecase.NewBlogUseCase(blogRepo, assets, redisClient, notifier, log, usecase.Options{
		ImageFolder:   cfg.BlogImageFolder,
		MaxImageBytes: maxImageBytes,
	})

	blogHandler := blogHTTP.NewBlogHandler(blogUseCase, log, maxImageBytes)

	r := gin.Default()
	r.MaxMultipartMemory = maxImageBytes

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitPerMinute, time.Minute))

	{
		api.POST("/blogs", blogHandler.CreateBlog)
		api.GET("/blogs", blogHandler.ListBlogs)
		api.GET("/blogs/mine", blogHandler.ListMyBlogs)
		api.GET("/blogs/popular", blogHandler.PopularBlogs)
		api.GET("/blogs/search", blogHandler.SearchBlogs)
		api.GET("/blogs/category/:category", blogHandler.CategoryBlogs)
		api.GET("/blogs/:id", blogHandler.GetBlog)
		api.PUT("/blogs/:id", blogHandler.UpdateBlog)
		api.DELETE("/blogs/:id", blogHandler.DeleteBlog)
		api.POST("/blogs/:id/comments", blogHandler.AddComment)
		api.POST("/blogs/:id/like", blogHandler.ToggleLike)
		api.GET("/blogs/:id/liked", blogHandler.IsLiked)
		api.POST("/blogs/:id/view", blogHandler.IncrementView)
	}

	me := api.Group("/me")
	{
		me.GET("/comments/total", blogHandler.TotalComments)
		me.GET("/likes/total", blogHandler.TotalLikes)
		me.GET("/stats", blogHandler.AuthorStats)
	}

	return r
}

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, assets usecase.AssetStore, queueClient *queue.Client, redisClient *redis.Client) {
	r := NewRouter(cfg, log, db, assets, queueClient, redisClient)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info("Blog service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down blog service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Drain in-flight requests before closing the pools they use.
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	if queueClient != nil {
		queueClient.Close()
	}

	log.Info("Blog service exited")
}
