package persistent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blog-service/services/notification/internal/entity"

	"github.com/redis/go-redis/v9"
)

const (
	maxStoredNotifications = 100
	notificationTTL        = 30 * 24 * time.Hour
)

// NotificationStore keeps the latest notifications of every user and fans
// new ones out to live subscribers.
type NotificationStore interface {
	Push(ctx context.Context, notification *entity.Notification) error
	List(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error)
	DeleteByBlogID(ctx context.Context, userID, blogID string) (int, error)
	Subscribe(ctx context.Context, userID string) (<-chan string, func() error)
}

type redisNotificationStore struct {
	redisClient *redis.Client
}

func NewNotificationStore(redisClient *redis.Client) NotificationStore {
	return &redisNotificationStore{redisClient: redisClient}
}

func notificationsKey(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

func (s *redisNotificationStore) Push(ctx context.Context, notification *entity.Notification) error {
	notificationJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := notificationsKey(notification.UserID)
	pipe := s.redisClient.TxPipeline()
	pipe.LPush(ctx, key, notificationJSON)
	pipe.LTrim(ctx, key, 0, maxStoredNotifications-1)
	pipe.Expire(ctx, key, notificationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	// The list and the pub/sub channel share a name.
	if err := s.redisClient.Publish(ctx, key, notificationJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification on %s: %w", key, err)
	}
	return nil
}

func (s *redisNotificationStore) List(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	key := notificationsKey(userID)

	raw, err := s.redisClient.LRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get notifications: %w", err)
	}

	notifications := make([]entity.Notification, 0, len(raw))
	for _, item := range raw {
		var notification entity.Notification
		if err := json.Unmarshal([]byte(item), &notification); err == nil {
			notifications = append(notifications, notification)
		}
	}

	total, err := s.redisClient.LLen(ctx, key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return notifications, total, nil
}

// DeleteByBlogID drops every notification about blogID. Each matching entry
// is removed by value, so concurrent pushes are not lost.
func (s *redisNotificationStore) DeleteByBlogID(ctx context.Context, userID, blogID string) (int, error) {
	key := notificationsKey(userID)

	raw, err := s.redisClient.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get notifications: %w", err)
	}

	deleted := 0
	for _, item := range raw {
		var notification entity.Notification
		if err := json.Unmarshal([]byte(item), &notification); err != nil {
			continue
		}
		if id, _ := notification.Data["blog_id"].(string); id != blogID {
			continue
		}
		removed, err := s.redisClient.LRem(ctx, key, 1, item).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete notification: %w", err)
		}
		deleted += int(removed)
	}
	return deleted, nil
}

func (s *redisNotificationStore) Subscribe(ctx context.Context, userID string) (<-chan string, func() error) {
	pubsub := s.redisClient.Subscribe(ctx, notificationsKey(userID))

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, pubsub.Close
}
