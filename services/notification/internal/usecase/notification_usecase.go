package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-service/pkg/logger"
	"blog-service/pkg/queue"
	"blog-service/services/notification/internal/entity"
	"blog-service/services/notification/internal/repo/persistent"
)

// QueueInspector reports the backlog of the notification queue.
type QueueInspector interface {
	GetQueueLength() (int, error)
}

type NotificationUseCase interface {
	HandleTask(ctx context.Context, task map[string]interface{}) error
	GetNotifications(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error)
	DeleteNotificationsByBlogID(ctx context.Context, userID, blogID string) (int, error)
	Subscribe(ctx context.Context, userID string) (<-chan string, func() error)
	QueueLength() (int, error)
}

type notificationUseCase struct {
	store  persistent.NotificationStore
	queue  QueueInspector
	logger *logger.Logger
	now    func() time.Time
}

// NewNotificationUseCase builds the use case. inspector may be nil when the
// broker is unavailable.
func NewNotificationUseCase(store persistent.NotificationStore, inspector QueueInspector, logger *logger.Logger) NotificationUseCase {
	return &notificationUseCase{
		store:  store,
		queue:  inspector,
		logger: logger,
		now:    time.Now,
	}
}

// HandleTask turns a queued engagement task into a stored notification for
// the blog author.
func (uc *notificationUseCase) HandleTask(ctx context.Context, task map[string]interface{}) error {
	taskType, _ := task["type"].(string)
	userID, _ := task["user_id"].(string)
	actorID, _ := task["actor_id"].(string)
	blogID, _ := task["blog_id"].(string)

	if userID == "" || actorID == "" || blogID == "" {
		uc.logger.Error("[NOTIFICATION HANDLER] Invalid %s task: missing user_id, actor_id or blog_id, task=%+v", taskType, task)
		return fmt.Errorf("%w: missing user_id, actor_id or blog_id", entity.ErrInvalidTask)
	}

	blogTitle, _ := task["blog_title"].(string)
	if blogTitle == "" {
		blogTitle = "your blog"
	} else {
		blogTitle = fmt.Sprintf("%q", blogTitle)
	}

	notification := &entity.Notification{
		UserID:    userID,
		Type:      taskType,
		CreatedAt: uc.now().UTC().Format(time.RFC3339),
		Data: map[string]interface{}{
			"blog_id":  blogID,
			"actor_id": actorID,
		},
	}

	switch taskType {
	case queue.TaskNewComment:
		actorName, _ := task["actor_name"].(string)
		if actorName == "" {
			actorName = "Someone"
		}
		notification.Title = "New Comment!"
		notification.Message = fmt.Sprintf("%s commented on %s", actorName, blogTitle)
		if commentID, ok := task["comment_id"].(string); ok {
			notification.Data["comment_id"] = commentID
		}
	case queue.TaskLike:
		notification.Title = "New Like!"
		notification.Message = fmt.Sprintf("Someone liked %s", blogTitle)
	default:
		uc.logger.Error("[NOTIFICATION HANDLER] Unknown notification type: %s, task=%+v", taskType, task)
		return fmt.Errorf("%w: %q", entity.ErrUnknownTaskType, taskType)
	}

	if err := uc.store.Push(ctx, notification); err != nil {
		uc.logger.Error("[NOTIFICATION HANDLER] Failed to deliver %s notification to user %s: %v", taskType, userID, err)
		return err
	}

	uc.logger.Info("[NOTIFICATION HANDLER] Delivered %s notification to user %s about blog %s", taskType, userID, blogID)
	return nil
}

func (uc *notificationUseCase) GetNotifications(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	return uc.store.List(ctx, userID, limit, offset)
}

func (uc *notificationUseCase) DeleteNotificationsByBlogID(ctx context.Context, userID, blogID string) (int, error) {
	return uc.store.DeleteByBlogID(ctx, userID, blogID)
}

func (uc *notificationUseCase) Subscribe(ctx context.Context, userID string) (<-chan string, func() error) {
	return uc.store.Subscribe(ctx, userID)
}

var errQueueUnavailable = errors.New("queue client is not available")

func (uc *notificationUseCase) QueueLength() (int, error) {
	if uc.queue == nil {
		return 0, errQueueUnavailable
	}
	return uc.queue.GetQueueLength()
}
