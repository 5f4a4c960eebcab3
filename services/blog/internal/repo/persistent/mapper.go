package persistent

import (
	"blog-service/services/blog/internal/entity"
	"blog-service/services/blog/internal/model"
)

func ToBlogEntity(m *model.BlogModel) *entity.Blog {
	if m == nil {
		return nil
	}

	return &entity.Blog{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		ImageKey:    m.ImageKey,
		Category:    m.Category,
		Views:       m.Views,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToBlogModel(e *entity.Blog) *model.BlogModel {
	if e == nil {
		return nil
	}

	return &model.BlogModel{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		Description: e.Description,
		ImageURL:    e.ImageURL,
		ImageKey:    e.ImageKey,
		Category:    e.Category,
		Views:       e.Views,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToBlogEntities(models []model.BlogModel) []*entity.Blog {
	blogs := make([]*entity.Blog, len(models))
	for i := range models {
		blogs[i] = ToBlogEntity(&models[i])
	}
	return blogs
}

func ToCommentEntity(m *model.CommentModel) entity.Comment {
	if m == nil {
		return entity.Comment{}
	}

	return entity.Comment{
		ID:        m.ID,
		BlogID:    m.BlogID,
		UserID:    m.UserID,
		Username:  m.Username,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}

func ToCommentModel(e *entity.Comment) *model.CommentModel {
	if e == nil {
		return nil
	}

	return &model.CommentModel{
		ID:        e.ID,
		BlogID:    e.BlogID,
		UserID:    e.UserID,
		Username:  e.Username,
		Comment:   e.Comment,
		CreatedAt: e.CreatedAt,
	}
}

func ToLikeEntity(m *model.LikeModel) entity.Like {
	if m == nil {
		return entity.Like{}
	}

	return entity.Like{
		ID:        m.ID,
		BlogID:    m.BlogID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}
