package persistent

import (
	"context"
	"errors"
	"strings"

	"blog-service/services/blog/internal/entity"
	"blog-service/services/blog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlogRepository interface {
	Create(ctx context.Context, blog *entity.Blog) error
	GetByID(ctx context.Context, id string) (*entity.Blog, error)
	Update(ctx context.Context, blog *entity.Blog) error
	DeleteWithEngagement(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Blog, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Blog, error)
	Search(ctx context.Context, term string) ([]*entity.Blog, error)
	ListByCategory(ctx context.Context, category string) ([]*entity.Blog, error)
	ListPopular(ctx context.Context, limit int) ([]*entity.Blog, error)
	IncrementViews(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment *entity.Comment) error
	ListComments(ctx context.Context, blogID string) ([]entity.Comment, error)
	ToggleLike(ctx context.Context, blogID, userID string) (bool, error)
	IsLiked(ctx context.Context, blogID, userID string) (bool, error)
	ListLikes(ctx context.Context, blogID string) ([]entity.Like, error)

	CountCommentsByAuthor(ctx context.Context, userID string) (int64, error)
	CountLikesByAuthor(ctx context.Context, userID string) (int64, error)
	AuthorStats(ctx context.Context, userID string) (*entity.AuthorStats, error)
}

type blogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *entity.Blog) error {
	blogModel := ToBlogModel(blog)
	if err := r.db.WithContext(ctx).Create(blogModel).Error; err != nil {
		return err
	}
	*blog = *ToBlogEntity(blogModel)
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	var blogModel model.BlogModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&blogModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrBlogNotFound
		}
		return nil, err
	}
	return ToBlogEntity(&blogModel), nil
}

// Update writes every mutable column, including unchanged ones.
func (r *blogRepository) Update(ctx context.Context, blog *entity.Blog) error {
	result := r.db.WithContext(ctx).Model(&model.BlogModel{}).Where("id = ?", blog.ID).Updates(map[string]interface{}{
		"title":       blog.Title,
		"description": blog.Description,
		"image_url":   blog.ImageURL,
		"image_key":   blog.ImageKey,
		"category":    blog.Category,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrBlogNotFound
	}
	return nil
}

// DeleteWithEngagement removes the blog together with its comments and likes.
func (r *blogRepository) DeleteWithEngagement(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&model.CommentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", id).Delete(&model.LikeModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.BlogModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrBlogNotFound
		}
		return nil
	})
}

func (r *blogRepository) List(ctx context.Context) ([]*entity.Blog, error) {
	return r.find(r.db.WithContext(ctx).Order("created_at DESC").Order("id ASC"))
}

func (r *blogRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Blog, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id ASC"))
}

func (r *blogRepository) Search(ctx context.Context, term string) ([]*entity.Blog, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	query := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("created_at DESC").Order("id ASC")
	return r.find(query)
}

func (r *blogRepository) ListByCategory(ctx context.Context, category string) ([]*entity.Blog, error) {
	return r.find(r.db.WithContext(ctx).Where("category = ?", category).Order("created_at DESC").Order("id ASC"))
}

// ListPopular orders by views, breaking ties by id so results are stable.
func (r *blogRepository) ListPopular(ctx context.Context, limit int) ([]*entity.Blog, error) {
	return r.find(r.db.WithContext(ctx).Order("views DESC").Order("id ASC").Limit(limit))
}

func (r *blogRepository) IncrementViews(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&model.BlogModel{}).Where("id = ?", id).
		UpdateColumn("views", clause.Expr{SQL: "views + ?", Vars: []interface{}{1}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrBlogNotFound
	}
	return nil
}

func (r *blogRepository) CreateComment(ctx context.Context, comment *entity.Comment) error {
	commentModel := ToCommentModel(comment)
	if err := r.db.WithContext(ctx).Create(commentModel).Error; err != nil {
		return err
	}
	*comment = ToCommentEntity(commentModel)
	return nil
}

func (r *blogRepository) ListComments(ctx context.Context, blogID string) ([]entity.Comment, error) {
	var commentModels []model.CommentModel
	if err := r.db.WithContext(ctx).Where("blog_id = ?", blogID).Order("created_at ASC").Order("id ASC").Find(&commentModels).Error; err != nil {
		return nil, err
	}

	comments := make([]entity.Comment, len(commentModels))
	for i := range commentModels {
		comments[i] = ToCommentEntity(&commentModels[i])
	}
	return comments, nil
}

// ToggleLike flips the like for (blogID, userID) and reports the new state.
// The delete runs first so the toggle never reads before it writes; the
// unique index absorbs a concurrent duplicate insert.
func (r *blogRepository) ToggleLike(ctx context.Context, blogID, userID string) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("blog_id = ? AND user_id = ?", blogID, userID).Delete(&model.LikeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		likeModel := &model.LikeModel{BlogID: blogID, UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(likeModel).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	return liked, err
}

func (r *blogRepository) IsLiked(ctx context.Context, blogID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LikeModel{}).Where("blog_id = ? AND user_id = ?", blogID, userID).Count(&count).Error
	return count > 0, err
}

func (r *blogRepository) ListLikes(ctx context.Context, blogID string) ([]entity.Like, error) {
	var likeModels []model.LikeModel
	if err := r.db.WithContext(ctx).Where("blog_id = ?", blogID).Order("created_at ASC").Order("id ASC").Find(&likeModels).Error; err != nil {
		return nil, err
	}

	likes := make([]entity.Like, len(likeModels))
	for i := range likeModels {
		likes[i] = ToLikeEntity(&likeModels[i])
	}
	return likes, nil
}

func (r *blogRepository) CountCommentsByAuthor(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CommentModel{}).
		Joins("JOIN blogs ON blogs.id = comments.blog_id").
		Where("blogs.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *blogRepository) CountLikesByAuthor(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LikeModel{}).
		Joins("JOIN blogs ON blogs.id = likes.blog_id").
		Where("blogs.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

type blogCountsRow struct {
	BlogID   string
	Views    int64
	Comments int64
	Likes    int64
}

func (r *blogRepository) AuthorStats(ctx context.Context, userID string) (*entity.AuthorStats, error) {
	var rows []blogCountsRow
	err := r.db.WithContext(ctx).Table("blogs").
		Select("blogs.id AS blog_id, blogs.views AS views, COUNT(DISTINCT comments.id) AS comments, COUNT(DISTINCT likes.id) AS likes").
		Joins("LEFT JOIN comments ON comments.blog_id = blogs.id").
		Joins("LEFT JOIN likes ON likes.blog_id = blogs.id").
		Where("blogs.user_id = ?", userID).
		Group("blogs.id, blogs.views").
		Order("blogs.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &entity.AuthorStats{Blogs: make([]entity.BlogCounts, len(rows))}
	for i, row := range rows {
		stats.Blogs[i] = entity.BlogCounts{BlogID: row.BlogID, Comments: row.Comments, Likes: row.Likes}
		stats.TotalBlogs++
		stats.TotalViews += row.Views
		stats.TotalComments += row.Comments
		stats.TotalLikes += row.Likes
	}
	return stats, nil
}

func (r *blogRepository) find(query *gorm.DB) ([]*entity.Blog, error) {
	var blogModels []model.BlogModel
	if err := query.Find(&blogModels).Error; err != nil {
		return nil, err
	}
	return ToBlogEntities(blogModels), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
