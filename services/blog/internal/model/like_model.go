package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikeModel rows are unique per (blog_id, user_id).
type LikeModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	BlogID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_likes_blog_user" json:"blog_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_likes_blog_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (LikeModel) TableName() string {
	return "likes"
}

func (l *LikeModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
