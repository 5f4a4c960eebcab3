package http

import (
	"net/http"
	"strconv"

	"blog-service/pkg/jwt"
	"blog-service/pkg/logger"
	"blog-service/services/notification/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	logger              *logger.Logger
	jwtService          *jwt.Service
}

func NewNotificationHandler(notificationUseCase usecase.NotificationUseCase, logger *logger.Logger, jwtService *jwt.Service) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		logger:              logger,
		jwtService:          jwtService,
	}
}

// GetNotifications godoc
// @Summary      Get user notifications
// @Description  Get comment and like notifications for the authenticated author
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of notifications to return (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	notifications, totalCount, err := h.notificationUseCase.GetNotifications(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"total":         totalCount,
		"offset":        offset,
	})
}

// DeleteNotificationsByBlogID godoc
// @Summary      Clear notifications for a blog
// @Description  Remove every notification about a blog once the author has seen it
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        blog_id path string true "Blog ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /notifications/{blog_id} [delete]
func (h *NotificationHandler) DeleteNotificationsByBlogID(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deleted, err := h.notificationUseCase.DeleteNotificationsByBlogID(c.Request.Context(), userID, c.Param("blog_id"))
	if err != nil {
		h.logger.Error("Failed to delete notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notifications deleted",
		"deleted": deleted,
	})
}

// QueueStatus godoc
// @Summary      Notification queue backlog
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  map[string]int
// @Failure      503  {object}  map[string]string
// @Router       /notifications/queue [get]
func (h *NotificationHandler) QueueStatus(c *gin.Context) {
	queueLength, err := h.notificationUseCase.QueueLength()
	if err != nil {
		h.logger.Warn("Failed to get queue length: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queue_length": queueLength})
}

// HandleWebSocket streams new notifications to the author. Browsers cannot
// set headers on the upgrade request, so the token may come as ?token=.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}

		claims, err := h.jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID = claims.UserID
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("WebSocket connected for user %s", userID)

	messages, unsubscribe := h.notificationUseCase.Subscribe(c.Request.Context(), userID)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType == websocket.CloseMessage {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Info("WebSocket disconnected for user %s", userID)
			return
		case payload, ok := <-messages:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				h.logger.Error("Failed to write WebSocket message: %v", err)
				return
			}
		}
	}
}
