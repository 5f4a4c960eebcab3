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
	notificationHTTP "blog-service/services/notification/internal/controller/http"
	"blog-service/services/notification/internal/repo/persistent"
	"blog-service/services/notification/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func NewRouter(cfg *config.Config, log *logger.Logger, notificationUseCase usecase.NotificationUseCase) *gin.Engine {
	jwtService := jwt.NewService(cfg.JWTSecret)
	notificationHandler := notificationHTTP.NewNotificationHandler(notificationUseCase, log, jwtService)

	r := gin.Default()

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

	api := r.Group("/api/v1")
	// WebSocket endpoint authenticates via query parameter
	api.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	api.GET("/notifications/queue", notificationHandler.QueueStatus)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.DELETE("/notifications/:blog_id", notificationHandler.DeleteNotificationsByBlogID)
	}

	return r
}

// Run serves the notification API and, when a broker is available, turns
// queued blog engagement tasks into notifications.
func Run(cfg *config.Config, log *logger.Logger, redisClient *redis.Client, queueClient *queue.Client) {
	var inspector usecase.QueueInspector
	if queueClient != nil {
		inspector = queueClient
	}

	notificationUseCase := usecase.NewNotificationUseCase(persistent.NewNotificationStore(redisClient), inspector, log)

	if queueClient != nil {
		err := queueClient.ConsumeNotificationTasks(func(task map[string]interface{}) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return notificationUseCase.HandleTask(ctx, task)
		})
		if err != nil {
			log.Error("Error starting notification queue consumer: %v", err)
		}
	} else {
		log.Warn("RabbitMQ unavailable, notifications will not be consumed")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: NewRouter(cfg, log, notificationUseCase),
	}

	go func() {
		log.Info("Notification service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down notification service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if queueClient != nil {
		queueClient.Close()
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	log.Info("Notification service exited")
}
