package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlogModel struct {
	ID          string         `gorm:"type:uuid;primary_key" json:"id"`
	UserID      string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"type:varchar(500);not null" json:"image_url"`
	ImageKey    string         `gorm:"type:varchar(500);not null" json:"image_key"`
	Category    string         `gorm:"type:varchar(100);index" json:"category"`
	Views       int64          `gorm:"not null;default:0;index" json:"views"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Comments    []CommentModel `gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Likes       []LikeModel    `gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE" json:"likes,omitempty"`
}

func (BlogModel) TableName() string {
	return "blogs"
}

func (b *BlogModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}
