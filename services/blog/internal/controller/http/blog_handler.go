package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"blog-service/pkg/logger"
	"blog-service/services/blog/internal/entity"
	"blog-service/services/blog/internal/usecase"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	blogUseCase   usecase.BlogUseCase
	logger        *logger.Logger
	maxImageBytes int64
}

func NewBlogHandler(blogUseCase usecase.BlogUseCase, logger *logger.Logger, maxImageBytes int64) *BlogHandler {
	return &BlogHandler{
		blogUseCase:   blogUseCase,
		logger:        logger,
		maxImageBytes: maxImageBytes,
	}
}

// BlogRequest is accepted as multipart/form-data (with an "image" file) or
// as JSON (with "image" holding a base64 data URI). The form "image" part is
// read by imageFromRequest and imageRef, never by the binder.
type BlogRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description"`
	Category    string `form:"category" json:"category"`
	Image       string `form:"-" json:"image"`
}

// UpdateBlogRequest leaves title validation to the use case, which checks
// existence and ownership first.
type UpdateBlogRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Category    string `form:"category" json:"category"`
	Image       string `form:"-" json:"image"`
}

type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// CreateBlog godoc
// @Summary      Create a blog
// @Description  Create a blog post. The cover image is sent either as a multipart file or as a base64 data URI in JSON.
// @Tags         blogs
// @Accept       multipart/form-data,json
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true "Blog title"
// @Param        description formData string false "Blog body"
// @Param        category formData string false "Blog category"
// @Param        image formData file false "Cover image"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /blogs [post]
func (h *BlogHandler) CreateBlog(c *gin.Context) {
	userID := c.GetString("user_id")

	var req BlogRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	image, err := h.imageFromRequest(c)
	if err != nil {
		h.respondError(c, "create blog", err)
		return
	}
	if ref := imageRef(c, req.Image); image == nil && ref != "" {
		image, err = usecase.DecodeDataURI(ref)
		if err != nil {
			h.respondError(c, "create blog", err)
			return
		}
	}

	blog, err := h.blogUseCase.CreateBlog(c.Request.Context(), usecase.CreateBlogInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Image:       image,
	})
	if err != nil {
		h.respondError(c, "create blog", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "Blog created successfully", "blog": blog})
}

// UpdateBlog godoc
// @Summary      Update a blog
// @Description  Replace the editable fields of a blog. Only the author may edit. The image is replaced only when a new file or a new data URI is sent.
// @Tags         blogs
// @Accept       multipart/form-data,json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog ID"
// @Param        title formData string true "Blog title"
// @Param        description formData string false "Blog body"
// @Param        category formData string false "Blog category"
// @Param        image formData file false "New cover image"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /blogs/{id} [put]
func (h *BlogHandler) UpdateBlog(c *gin.Context) {
	blogID := c.Param("id")
	userID := c.GetString("user_id")

	var req UpdateBlogRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	image, err := h.imageFromRequest(c)
	if err != nil {
		h.respondError(c, "update blog", err)
		return
	}

	blog, err := h.blogUseCase.UpdateBlog(c.Request.Context(), usecase.UpdateBlogInput{
		BlogID:      blogID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Image:       image,
		ImageRef:    imageRef(c, req.Image),
	})
	if err != nil {
		h.respondError(c, "update blog", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Blog updated successfully", "blog": blog})
}

// DeleteBlog godoc
// @Summary      Delete a blog
// @Description  Delete a blog with its comments, likes and cover image. Only the author may delete.
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /blogs/{id} [delete]
func (h *BlogHandler) DeleteBlog(c *gin.Context) {
	blogID := c.Param("id")
	userID := c.GetString("user_id")

	if err := h.blogUseCase.DeleteBlog(c.Request.Context(), blogID, userID); err != nil {
		h.respondError(c, "delete blog", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Blog deleted successfully"})
}

// GetBlog godoc
// @Summary      Get blog detail
// @Description  Get a blog with all of its comments and likes
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /blogs/{id} [get]
func (h *BlogHandler) GetBlog(c *gin.Context) {
	detail, err := h.blogUseCase.GetBlogDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "get blog", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blog": detail})
}

// ListBlogs godoc
// @Summary      List blogs
// @Description  Get every blog, newest first
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /blogs [get]
func (h *BlogHandler) ListBlogs(c *gin.Context) {
	blogs, err := h.blogUseCase.ListBlogs(c.Request.Context())
	h.respondBlogs(c, "list blogs", blogs, err)
}

// ListMyBlogs godoc
// @Summary      List my blogs
// @Description  Get the blogs written by the current user
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /blogs/mine [get]
func (h *BlogHandler) ListMyBlogs(c *gin.Context) {
	blogs, err := h.blogUseCase.ListMyBlogs(c.Request.Context(), c.GetString("user_id"))
	h.respondBlogs(c, "list user blogs", blogs, err)
}

// SearchBlogs godoc
// @Summary      Search blogs
// @Description  Case-insensitive substring search over title and description
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Param        q query string false "Search term"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /blogs/search [get]
func (h *BlogHandler) SearchBlogs(c *gin.Context) {
	blogs, err := h.blogUseCase.SearchBlogs(c.Request.Context(), c.Query("q"))
	h.respondBlogs(c, "search blogs", blogs, err)
}

// CategoryBlogs godoc
// @Summary      Blogs by category
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Param        category path string true "Category"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /blogs/category/{category} [get]
func (h *BlogHandler) CategoryBlogs(c *gin.Context) {
	blogs, err := h.blogUseCase.CategoryBlogs(c.Request.Context(), c.Param("category"))
	h.respondBlogs(c, "list category blogs", blogs, err)
}

// PopularBlogs godoc
// @Summary      Popular blogs
// @Description  Top three blogs by views
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /blogs/popular [get]
func (h *BlogHandler) PopularBlogs(c *gin.Context) {
	blogs, err := h.blogUseCase.PopularBlogs(c.Request.Context())
	h.respondBlogs(c, "list popular blogs", blogs, err)
}

// AddComment godoc
// @Summary      Comment on a blog
// @Tags         engagement
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog ID"
// @Param        request body CommentRequest true "Comment"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /blogs/{id}/comments [post]
func (h *BlogHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
		return
	}

	comment, err := h.blogUseCase.AddComment(
		c.Request.Context(),
		c.Param("id"),
		c.GetString("user_id"),
		c.GetString("username"),
		req.Comment,
	)
	if err != nil {
		h.respondError(c, "add comment", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "Comment added successfully", "comment": comment})
}

// ToggleLike godoc
// @Summary      Like or unlike a blog
// @Description  Flips the current user's like on the blog
// @Tags         engagement
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /blogs/{id}/like [post]
func (h *BlogHandler) ToggleLike(c *gin.Context) {
	liked, err := h.blogUseCase.ToggleLike(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, "toggle like", err)
		return
	}

	msg := "Disliked"
	if liked {
		msg = "Liked"
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg, "liked": liked})
}

// IsLiked godoc
// @Summary      Check like
// @Tags         engagement
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog ID"
// @Success      200  {object}  map[string]bool
// @Router       /blogs/{id}/liked [get]
func (h *BlogHandler) IsLiked(c *gin.Context) {
	liked, err := h.blogUseCase.IsLiked(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, "check like", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// IncrementView godoc
// @Summary      Record a view
// @Tags         engagement
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Blog ID"
// @Success      200  {object}  map[string]bool
// @Failure      404  {object}  map[string]string
// @Router       /blogs/{id}/view [post]
func (h *BlogHandler) IncrementView(c *gin.Context) {
	if err := h.blogUseCase.IncrementView(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "increment view", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TotalComments godoc
// @Summary      Comments received
// @Description  Number of comments across all of the current user's blogs
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /me/comments/total [get]
func (h *BlogHandler) TotalComments(c *gin.Context) {
	count, err := h.blogUseCase.TotalComments(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, "count comments", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": count})
}

// TotalLikes godoc
// @Summary      Likes received
// @Description  Number of likes across all of the current user's blogs
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /me/likes/total [get]
func (h *BlogHandler) TotalLikes(c *gin.Context) {
	count, err := h.blogUseCase.TotalLikes(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, "count likes", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": count})
}

// AuthorStats godoc
// @Summary      Author dashboard
// @Description  Totals and per-blog comment and like counts for the current user
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.AuthorStats
// @Router       /me/stats [get]
func (h *BlogHandler) AuthorStats(c *gin.Context) {
	stats, err := h.blogUseCase.AuthorStats(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.respondError(c, "load author stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *BlogHandler) respondBlogs(c *gin.Context, action string, blogs []*entity.Blog, err error) {
	if err != nil {
		h.respondError(c, action, err)
		return
	}
	if blogs == nil {
		blogs = []*entity.Blog{}
	}
	c.JSON(http.StatusOK, gin.H{"blogs": blogs, "count": len(blogs)})
}

func (h *BlogHandler) respondError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, entity.ErrBlogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "Blog not found"})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"msg": err.Error()})
	case errors.Is(err, entity.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"msg": err.Error()})
	default:
		h.logger.Error("Failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
	}
}

// imageFromRequest reads the optional "image" multipart file. It returns
// nil when the request is not multipart or carries no file.
func (h *BlogHandler) imageFromRequest(c *gin.Context) (*usecase.ImageUpload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}

	return h.readImageFile(fileHeader)
}

// imageRef returns the data URI or stored URL sent as the "image" value,
// from the JSON body or from a plain form field.
func imageRef(c *gin.Context, bound string) string {
	if bound != "" {
		return bound
	}
	switch {
	case strings.HasPrefix(c.ContentType(), "multipart/"), c.ContentType() == "application/x-www-form-urlencoded":
		return c.PostForm("image")
	}
	return ""
}

func (h *BlogHandler) readImageFile(fileHeader *multipart.FileHeader) (*usecase.ImageUpload, error) {
	if h.maxImageBytes > 0 && fileHeader.Size > h.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", entity.ErrInvalidInput, h.maxImageBytes)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return &usecase.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
