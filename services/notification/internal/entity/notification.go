package entity

import "errors"

// Notification is an engagement event delivered to a blog author.
type Notification struct {
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

var (
	ErrInvalidTask     = errors.New("invalid notification task")
	ErrUnknownTaskType = errors.New("unknown notification type")
)
