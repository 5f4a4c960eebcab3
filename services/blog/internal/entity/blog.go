package entity

import "time"

type Blog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	ImageKey    string    `json:"-"`
	Category    string    `json:"category"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blog_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Like struct {
	ID        string    `json:"id"`
	BlogID    string    `json:"blog_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BlogDetail is a blog with its comments and likes. Both slices are
// non-nil, so they encode as [] when empty.
type BlogDetail struct {
	Blog
	Comments []Comment `json:"comments"`
	Likes    []Like    `json:"likes"`
}

// BlogCounts holds engagement counters for a single blog.
type BlogCounts struct {
	BlogID   string `json:"blog_id"`
	Comments int64  `json:"comments"`
	Likes    int64  `json:"likes"`
}

type AuthorStats struct {
	TotalBlogs    int64        `json:"total_blogs"`
	TotalComments int64        `json:"total_comments"`
	TotalLikes    int64        `json:"total_likes"`
	TotalViews    int64        `json:"total_views"`
	Blogs         []BlogCounts `json:"blogs"`
}
