package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"blog-service/pkg/logger"
	"blog-service/pkg/queue"
	"blog-service/services/blog/internal/entity"
	"blog-service/services/blog/internal/repo/persistent"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	PopularLimit = 3

	popularCacheKey = "blogs:popular"
	popularCacheTTL = 30 * time.Second
)

// AssetStore is the external image host.
type AssetStore interface {
	UploadFile(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// Notifier publishes engagement events for the blog author.
type Notifier interface {
	PublishNotificationTask(task map[string]interface{}) error
}

type Options struct {
	ImageFolder   string
	MaxImageBytes int64
}

type CreateBlogInput struct {
	UserID      string
	Title       string
	Description string
	Category    string
	Image       *ImageUpload
}

// UpdateBlogInput replaces every editable field. The image changes when
// Image is set, or when ImageRef is a data URI that differs from the
// stored URL; otherwise the current asset is kept.
type UpdateBlogInput struct {
	BlogID      string
	UserID      string
	Title       string
	Description string
	Category    string
	Image       *ImageUpload
	ImageRef    string
}

type BlogUseCase interface {
	CreateBlog(ctx context.Context, in CreateBlogInput) (*entity.Blog, error)
	UpdateBlog(ctx context.Context, in UpdateBlogInput) (*entity.Blog, error)
	DeleteBlog(ctx context.Context, blogID, userID string) error

	AddComment(ctx context.Context, blogID, userID, username, text string) (*entity.Comment, error)
	ToggleLike(ctx context.Context, blogID, userID string) (bool, error)
	IsLiked(ctx context.Context, blogID, userID string) (bool, error)
	TotalComments(ctx context.Context, userID string) (int64, error)
	TotalLikes(ctx context.Context, userID string) (int64, error)
	AuthorStats(ctx context.Context, userID string) (*entity.AuthorStats, error)
	IncrementView(ctx context.Context, blogID string) error

	ListBlogs(ctx context.Context) ([]*entity.Blog, error)
	ListMyBlogs(ctx context.Context, userID string) ([]*entity.Blog, error)
	GetBlogDetail(ctx context.Context, blogID string) (*entity.BlogDetail, error)
	SearchBlogs(ctx context.Context, term string) ([]*entity.Blog, error)
	CategoryBlogs(ctx context.Context, category string) ([]*entity.Blog, error)
	PopularBlogs(ctx context.Context) ([]*entity.Blog, error)
}

type blogUseCase struct {
	blogRepo    persistent.BlogRepository
	assets      AssetStore
	redisClient *redis.Client
	notifier    Notifier
	logger      *logger.Logger
	opts        Options
}

// NewBlogUseCase wires the blog service. redisClient and notifier are
// optional and may be nil.
func NewBlogUseCase(
	blogRepo persistent.BlogRepository,
	assets AssetStore,
	redisClient *redis.Client,
	notifier Notifier,
	logger *logger.Logger,
	opts Options,
) BlogUseCase {
	if opts.ImageFolder == "" {
		opts.ImageFolder = "blogs_data"
	}
	return &blogUseCase{
		blogRepo:    blogRepo,
		assets:      assets,
		redisClient: redisClient,
		notifier:    notifier,
		logger:      logger,
		opts:        opts,
	}
}

func (uc *blogUseCase) CreateBlog(ctx context.Context, in CreateBlogInput) (*entity.Blog, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", entity.ErrInvalidInput)
	}

	key, url, err := uc.uploadImage(ctx, in.UserID, in.Image)
	if err != nil {
		return nil, err
	}

	blog := &entity.Blog{
		UserID:      in.UserID,
		Title:       title,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    url,
		ImageKey:    key,
	}

	if err := uc.blogRepo.Create(ctx, blog); err != nil {
		uc.discardAsset(ctx, key)
		return nil, &entity.PersistenceError{Op: "create blog", Err: err}
	}

	uc.invalidatePopular(ctx)
	return blog, nil
}

func (uc *blogUseCase) UpdateBlog(ctx context.Context, in UpdateBlogInput) (*entity.Blog, error) {
	blog, err := uc.getBlog(ctx, in.BlogID)
	if err != nil {
		return nil, err
	}

	if blog.UserID != in.UserID {
		return nil, entity.ErrForbidden
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", entity.ErrInvalidInput)
	}

	image := in.Image
	if image == nil && in.ImageRef != "" && in.ImageRef != blog.ImageURL {
		image, err = DecodeDataURI(in.ImageRef)
		if err != nil {
			return nil, err
		}
	}

	updated := *blog
	updated.Title = title
	updated.Description = in.Description
	updated.Category = strings.TrimSpace(in.Category)

	if image != nil {
		key, url, err := uc.uploadImage(ctx, in.UserID, image)
		if err != nil {
			return nil, err
		}
		updated.ImageKey = key
		updated.ImageURL = url
	}

	if err := uc.blogRepo.Update(ctx, &updated); err != nil {
		if image != nil {
			uc.discardAsset(ctx, updated.ImageKey)
		}
		if errors.Is(err, entity.ErrBlogNotFound) {
			return nil, err
		}
		return nil, &entity.PersistenceError{Op: "update blog", Err: err}
	}

	uc.invalidatePopular(ctx)

	// The row already points at the new asset, so the old one is removed last.
	if image != nil {
		if err := uc.deleteAsset(ctx, blog.ImageKey); err != nil {
			return nil, err
		}
	}

	return &updated, nil
}

func (uc *blogUseCase) DeleteBlog(ctx context.Context, blogID, userID string) error {
	blog, err := uc.getBlog(ctx, blogID)
	if err != nil {
		return err
	}

	if blog.UserID != userID {
		return entity.ErrForbidden
	}

	if err := uc.blogRepo.DeleteWithEngagement(ctx, blogID); err != nil {
		if errors.Is(err, entity.ErrBlogNotFound) {
			return err
		}
		return &entity.PersistenceError{Op: "delete blog", Err: err}
	}

	uc.invalidatePopular(ctx)
	return uc.deleteAsset(ctx, blog.ImageKey)
}

func (uc *blogUseCase) AddComment(ctx context.Context, blogID, userID, username, text string) (*entity.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment is required", entity.ErrInvalidInput)
	}

	blog, err := uc.getBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		BlogID:   blogID,
		UserID:   userID,
		Username: username,
		Comment:  text,
	}
	if err := uc.blogRepo.CreateComment(ctx, comment); err != nil {
		return nil, &entity.PersistenceError{Op: "add comment", Err: err}
	}

	if blog.UserID != userID {
		uc.publishNotification(map[string]interface{}{
			"type":       queue.TaskNewComment,
			"user_id":    blog.UserID,
			"actor_id":   userID,
			"actor_name": username,
			"blog_id":    blogID,
			"blog_title": blog.Title,
			"comment_id": comment.ID,
			"priority":   4,
		})
	}

	return comment, nil
}

func (uc *blogUseCase) ToggleLike(ctx context.Context, blogID, userID string) (bool, error) {
	blog, err := uc.getBlog(ctx, blogID)
	if err != nil {
		return false, err
	}

	liked, err := uc.blogRepo.ToggleLike(ctx, blogID, userID)
	if err != nil {
		return false, &entity.PersistenceError{Op: "toggle like", Err: err}
	}

	if liked && blog.UserID != userID {
		uc.publishNotification(map[string]interface{}{
			"type":       queue.TaskLike,
			"user_id":    blog.UserID,
			"actor_id":   userID,
			"blog_id":    blogID,
			"blog_title": blog.Title,
			"priority":   3,
		})
	}

	return liked, nil
}

func (uc *blogUseCase) IsLiked(ctx context.Context, blogID, userID string) (bool, error) {
	if !validBlogID(blogID) {
		return false, entity.ErrBlogNotFound
	}

	liked, err := uc.blogRepo.IsLiked(ctx, blogID, userID)
	if err != nil {
		return false, &entity.PersistenceError{Op: "check like", Err: err}
	}
	return liked, nil
}

func (uc *blogUseCase) TotalComments(ctx context.Context, userID string) (int64, error) {
	count, err := uc.blogRepo.CountCommentsByAuthor(ctx, userID)
	if err != nil {
		return 0, &entity.PersistenceError{Op: "count comments", Err: err}
	}
	return count, nil
}

func (uc *blogUseCase) TotalLikes(ctx context.Context, userID string) (int64, error) {
	count, err := uc.blogRepo.CountLikesByAuthor(ctx, userID)
	if err != nil {
		return 0, &entity.PersistenceError{Op: "count likes", Err: err}
	}
	return count, nil
}

func (uc *blogUseCase) AuthorStats(ctx context.Context, userID string) (*entity.AuthorStats, error) {
	stats, err := uc.blogRepo.AuthorStats(ctx, userID)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "author stats", Err: err}
	}
	return stats, nil
}

func (uc *blogUseCase) IncrementView(ctx context.Context, blogID string) error {
	if !validBlogID(blogID) {
		return entity.ErrBlogNotFound
	}

	if err := uc.blogRepo.IncrementViews(ctx, blogID); err != nil {
		if errors.Is(err, entity.ErrBlogNotFound) {
			return err
		}
		return &entity.PersistenceError{Op: "increment views", Err: err}
	}

	// Views drive the popular ranking.
	uc.invalidatePopular(ctx)
	return nil
}

func (uc *blogUseCase) ListBlogs(ctx context.Context) ([]*entity.Blog, error) {
	return uc.list(uc.blogRepo.List(ctx))
}

func (uc *blogUseCase) ListMyBlogs(ctx context.Context, userID string) ([]*entity.Blog, error) {
	return uc.list(uc.blogRepo.ListByUser(ctx, userID))
}

func (uc *blogUseCase) SearchBlogs(ctx context.Context, term string) ([]*entity.Blog, error) {
	return uc.list(uc.blogRepo.Search(ctx, strings.TrimSpace(term)))
}

func (uc *blogUseCase) CategoryBlogs(ctx context.Context, category string) ([]*entity.Blog, error) {
	return uc.list(uc.blogRepo.ListByCategory(ctx, strings.TrimSpace(category)))
}

func (uc *blogUseCase) PopularBlogs(ctx context.Context) ([]*entity.Blog, error) {
	if cached, ok := uc.cachedPopular(ctx); ok {
		return cached, nil
	}

	blogs, err := uc.list(uc.blogRepo.ListPopular(ctx, PopularLimit))
	if err != nil {
		return nil, err
	}

	uc.cachePopular(ctx, blogs)
	return blogs, nil
}

func (uc *blogUseCase) GetBlogDetail(ctx context.Context, blogID string) (*entity.BlogDetail, error) {
	blog, err := uc.getBlog(ctx, blogID)
	if err != nil {
		return nil, err
	}

	comments, err := uc.blogRepo.ListComments(ctx, blogID)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "list comments", Err: err}
	}

	likes, err := uc.blogRepo.ListLikes(ctx, blogID)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "list likes", Err: err}
	}

	detail := &entity.BlogDetail{Blog: *blog, Comments: comments, Likes: likes}
	if detail.Comments == nil {
		detail.Comments = []entity.Comment{}
	}
	if detail.Likes == nil {
		detail.Likes = []entity.Like{}
	}
	return detail, nil
}

// validBlogID reports whether blogID can name a stored blog. Postgres rejects
// malformed uuid text with an error instead of returning no rows.
func validBlogID(blogID string) bool {
	_, err := uuid.Parse(blogID)
	return err == nil
}

func (uc *blogUseCase) getBlog(ctx context.Context, blogID string) (*entity.Blog, error) {
	if !validBlogID(blogID) {
		return nil, entity.ErrBlogNotFound
	}

	blog, err := uc.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, entity.ErrBlogNotFound) {
			return nil, entity.ErrBlogNotFound
		}
		return nil, &entity.PersistenceError{Op: "get blog", Err: err}
	}
	return blog, nil
}

func (uc *blogUseCase) list(blogs []*entity.Blog, err error) ([]*entity.Blog, error) {
	if err != nil {
		return nil, &entity.PersistenceError{Op: "list blogs", Err: err}
	}
	if blogs == nil {
		blogs = []*entity.Blog{}
	}
	return blogs, nil
}

// uploadImage stores img under <folder>/<uuid><ext> and returns the key and
// public URL.
func (uc *blogUseCase) uploadImage(ctx context.Context, userID string, img *ImageUpload) (string, string, error) {
	contentType, ext, err := sniffImage(img, uc.opts.MaxImageBytes)
	if err != nil {
		return "", "", err
	}

	key := path.Join(uc.opts.ImageFolder, uuid.New().String()+ext)
	url, err := uc.assets.UploadFile(ctx, key, bytes.NewReader(img.Data), contentType)
	if err != nil {
		return "", "", &entity.UploadError{Err: err}
	}

	uc.logger.Info("Uploaded blog image %s for user %s", key, userID)
	return key, url, nil
}

func (uc *blogUseCase) deleteAsset(ctx context.Context, key string) error {
	if key == "" {
		uc.logger.Warn("Blog has no stored image key, skipping asset delete")
		return nil
	}
	if err := uc.assets.DeleteFile(ctx, key); err != nil {
		return &entity.AssetDeleteError{Key: key, Err: err}
	}
	return nil
}

// discardAsset removes an upload whose row was never written.
func (uc *blogUseCase) discardAsset(ctx context.Context, key string) {
	if err := uc.assets.DeleteFile(ctx, key); err != nil {
		uc.logger.Error("Failed to remove orphaned image %s: %v", key, err)
	}
}

func (uc *blogUseCase) publishNotification(task map[string]interface{}) {
	if uc.notifier == nil {
		return
	}

	if err := uc.notifier.PublishNotificationTask(task); err != nil {
		uc.logger.Error("[NOTIFICATION QUEUE] Failed to publish %v task for blog %v: %v", task["type"], task["blog_id"], err)
	}
}

func (uc *blogUseCase) cachedPopular(ctx context.Context) ([]*entity.Blog, bool) {
	if uc.redisClient == nil {
		return nil, false
	}

	data, err := uc.redisClient.Get(ctx, popularCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			uc.logger.Warn("Failed to read popular blogs cache: %v", err)
		}
		return nil, false
	}

	var blogs []*entity.Blog
	if err := json.Unmarshal(data, &blogs); err != nil {
		uc.logger.Warn("Discarding malformed popular blogs cache: %v", err)
		return nil, false
	}
	return blogs, true
}

func (uc *blogUseCase) cachePopular(ctx context.Context, blogs []*entity.Blog) {
	if uc.redisClient == nil {
		return
	}

	data, err := json.Marshal(blogs)
	if err != nil {
		return
	}
	if err := uc.redisClient.Set(ctx, popularCacheKey, data, popularCacheTTL).Err(); err != nil {
		uc.logger.Warn("Failed to cache popular blogs: %v", err)
	}
}

func (uc *blogUseCase) invalidatePopular(ctx context.Context) {
	if uc.redisClient == nil {
		return
	}
	if err := uc.redisClient.Del(ctx, popularCacheKey).Err(); err != nil {
		uc.logger.Warn("Failed to invalidate popular blogs cache: %v", err)
	}
}
