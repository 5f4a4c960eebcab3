package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"blog-service/pkg/logger"
	"blog-service/pkg/queue"
	"blog-service/services/blog/internal/entity"
	"blog-service/services/blog/internal/model"
	"blog-service/services/blog/internal/repo/persistent"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// MockAssetStore is a mock implementation of AssetStore
type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) UploadFile(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	args := m.Called(key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockAssetStore) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type recordingNotifier struct {
	mu    sync.Mutex
	tasks []map[string]interface{}
}

func (n *recordingNotifier) PublishNotificationTask(task map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tasks = append(n.tasks, task)
	return nil
}

func (n *recordingNotifier) sent() []map[string]interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]map[string]interface{}(nil), n.tasks...)
}

// failingCreateRepo rejects inserts so the compensation path runs.
type failingCreateRepo struct {
	persistent.BlogRepository
}

func (r failingCreateRepo) Create(ctx context.Context, blog *entity.Blog) error {
	return errors.New("connection reset")
}

type fixture struct {
	repo     persistent.BlogRepository
	assets   *MockAssetStore
	notifier *recordingNotifier
	uc       BlogUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.BlogModel{}, &model.CommentModel{}, &model.LikeModel{}))

	f := &fixture{
		repo:     persistent.NewBlogRepository(db),
		assets:   new(MockAssetStore),
		notifier: &recordingNotifier{},
	}
	f.uc = NewBlogUseCase(f.repo, f.assets, nil, f.notifier, logger.New(), Options{
		ImageFolder:   "blogs_data",
		MaxImageBytes: 1024,
	})
	return f
}

// withRedis rebuilds the use case on top of an in-process redis.
func (f *fixture) withRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	f.uc = NewBlogUseCase(f.repo, f.assets, redisClient, f.notifier, logger.New(), Options{
		ImageFolder:   "blogs_data",
		MaxImageBytes: 1024,
	})
	return mr
}

func (f *fixture) seedBlog(t *testing.T, userID, title string, views int) *entity.Blog {
	t.Helper()
	blog := &entity.Blog{
		UserID:   userID,
		Title:    title,
		Category: "tech",
		ImageURL: "https://cdn.example.com/blogs_data/" + title + ".png",
		ImageKey: "blogs_data/" + title + ".png",
	}
	require.NoError(t, f.repo.Create(context.Background(), blog))
	for i := 0; i < views; i++ {
		require.NoError(t, f.repo.IncrementViews(context.Background(), blog.ID))
	}
	return blog
}

func blogImageKey(key string) bool {
	return strings.HasPrefix(key, "blogs_data/") && strings.HasSuffix(key, ".png")
}

func TestCreateBlog_Success(t *testing.T) {
	f := newFixture(t)
	f.assets.On("UploadFile", mock.MatchedBy(blogImageKey), "image/png").Return("https://cdn.example.com/new.png", nil).Once()

	blog, err := f.uc.CreateBlog(context.Background(), CreateBlogInput{
		UserID:      "author-1",
		Title:       "  Hello  ",
		Description: "first post",
		Category:    "tech",
		Image:       &ImageUpload{Filename: "cover.png", Data: pngData},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello", blog.Title)
	assert.Equal(t, "https://cdn.example.com/new.png", blog.ImageURL)
	assert.True(t, blogImageKey(blog.ImageKey))

	stored, err := f.repo.GetByID(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, blog.ImageKey, stored.ImageKey)
	assert.Equal(t, int64(0), stored.Views)
	f.assets.AssertExpectations(t)
}

func TestCreateBlog_InvalidInput(t *testing.T) {
	f := newFixture(t)

	cases := []CreateBlogInput{
		{UserID: "u", Title: "", Image: &ImageUpload{Data: pngData}},
		{UserID: "u", Title: "t"},
		{UserID: "u", Title: "t", Image: &ImageUpload{Data: []byte("plain text, not an image")}},
		{UserID: "u", Title: "t", Image: &ImageUpload{Data: append(pngData, make([]byte, 2048)...)}},
	}

	for _, in := range cases {
		_, err := f.uc.CreateBlog(context.Background(), in)
		assert.ErrorIs(t, err, entity.ErrInvalidInput)
	}
	f.assets.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything)
}

func TestCreateBlog_UploadFailure(t *testing.T) {
	f := newFixture(t)
	f.assets.On("UploadFile", mock.Anything, mock.Anything).Return("", errors.New("bucket unavailable"))

	_, err := f.uc.CreateBlog(context.Background(), CreateBlogInput{
		UserID: "author-1",
		Title:  "Hello",
		Image:  &ImageUpload{Data: pngData},
	})

	var uploadErr *entity.UploadError
	assert.ErrorAs(t, err, &uploadErr)

	blogs, err := f.uc.ListBlogs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blogs)
}

func TestCreateBlog_PersistenceFailureRemovesUpload(t *testing.T) {
	f := newFixture(t)
	uc := NewBlogUseCase(failingCreateRepo{f.repo}, f.assets, nil, nil, logger.New(), Options{})

	var uploadedKey string
	f.assets.On("UploadFile", mock.MatchedBy(blogImageKey), "image/png").
		Run(func(args mock.Arguments) { uploadedKey = args.String(0) }).
		Return("https://cdn.example.com/new.png", nil).Once()
	f.assets.On("DeleteFile", mock.MatchedBy(blogImageKey)).Return(nil).Once()

	_, err := uc.CreateBlog(context.Background(), CreateBlogInput{
		UserID: "author-1",
		Title:  "Hello",
		Image:  &ImageUpload{Data: pngData},
	})

	var persistErr *entity.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "create blog", persistErr.Op)
	f.assets.AssertCalled(t, "DeleteFile", uploadedKey)
	f.assets.AssertExpectations(t)
}

func TestUpdateBlog_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	blog := f.seedBlog(t, "author-1", "Original", 0)

	_, err := f.uc.UpdateBlog(context.Background(), UpdateBlogInput{
		BlogID:   blog.ID,
		UserID:   "intruder",
		Title:    "Hijacked",
		ImageRef: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData),
	})

	assert.ErrorIs(t, err, entity.ErrForbidden)

	stored, err := f.repo.GetByID(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Title)
	assert.Equal(t, blog.ImageKey, stored.ImageKey)
	f.assets.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything)
	f.assets.AssertNotCalled(t, "DeleteFile", mock.Anything)
}

func TestUpdateBlog_UnchangedImageSkipsAssetStore(t *testing.T) {
	f := newFixture(t)
	blog := f.seedBlog(t, "author-1", "Original", 0)

	for _, ref := range []string{"", blog.ImageURL} {
		updated, err := f.uc.UpdateBlog(context.Background(), UpdateBlogInput{
			BlogID:      blog.ID,
			UserID:      "author-1",
			Title:       "Renamed",
			Description: "new body",
			Category:    "travel",
			ImageRef:    ref,
		})

		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, blog.ImageURL, updated.ImageURL)
		assert.Equal(t, blog.ImageKey, updated.ImageKey)
	}

	stored, err := f.repo.GetByID(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "travel", stored.Category)
	assert.Equal(t, "new body", stored.Description)
	f.assets.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything)
	f.assets.AssertNotCalled(t, "DeleteFile", mock.Anything)
}

func TestUpdateBlog_NewImageReplacesAsset(t *testing.T) {
	f := newFixture(t)
	blog := f.seedBlog(t, "author-1", "Original", 0)

	f.assets.On("UploadFile", mock.MatchedBy(blogImageKey), "image/png").Return("https://cdn.example.com/replacement.png", nil).Once()
	f.assets.On("DeleteFile", blog.ImageKey).Return(nil).Once()

	updated, err := f.uc.UpdateBlog(context.Background(), UpdateBlogInput{
		BlogID:   blog.ID,
		UserID:   "author-1",
		Title:    "Original",
		ImageRef: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData),
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/replacement.png", updated.ImageURL)
	assert.NotEqual(t, blog.ImageKey, updated.ImageKey)

	stored, err := f.repo.GetByID(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageKey, stored.ImageKey)
	f.assets.AssertNumberOfCalls(t, "UploadFile", 1)
	f.assets.AssertNumberOfCalls(t, "DeleteFile", 1)
}

func TestUpdateBlog_OldAssetDeleteFailure(t *testing.T) {
	f := newFixture(t)
	blog := f.seedBlog(t, "author-1", "Original", 0)

	f.assets.On("UploadFile", mock.Anything, mock.Anything).Return("https://cdn.example.com/replacement.png", nil)
	f.assets.On("DeleteFile", blog.ImageKey).Return(errors.New("access denied"))

	_, err := f.uc.UpdateBlog(context.Background(), UpdateBlogInput{
		BlogID: blog.ID,
		UserID: "author-1",
		Title:  "Original",
		Image:  &ImageUpload{Filename: "new.png", Data: pngData},
	})

	var deleteErr *entity.AssetDeleteError
	require.ErrorAs(t, err, &deleteErr)
	assert.Equal(t, blog.ImageKey, deleteErr.Key)

	stored, err := f.repo.GetByID(context.Background(), blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/replacement.png", stored.ImageURL)
}

func TestUpdateBlog_InvalidDataURI(t *testing.T) {
	f := newFixture(t)
	blog := f.seedBlog(t, "author-1", "Original", 0)

	_, err := f.uc.UpdateBlog(context.Background(), UpdateBlogInput{
		BlogID:   blog.ID,
		UserID:   "author-1",
		Title:    "Original",
		ImageRef: "https://elsewhere.example.com/cat.png",
	})

	assert.ErrorIs(t, err, entity.ErrInvalidInput)
	f.assets.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything)
}

func TestUpdateBlog_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.UpdateBlog(context.Background(), UpdateBlogInput{BlogID: "missing", UserID: "u", Title: "t"})
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)
}

func TestUpdateBlog_EmptyTitleAfterOwnershipCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := f.seedBlog(t, "author-1", "Original", 0)

	_, err := f.uc.UpdateBlog(ctx, UpdateBlogInput{BlogID: blog.ID, UserID: "intruder", Title: ""})
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = f.uc.UpdateBlog(ctx, UpdateBlogInput{BlogID: "missing", UserID: "author-1", Title: ""})
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)

	_, err = f.uc.UpdateBlog(ctx, UpdateBlogInput{BlogID: blog.ID, UserID: "author-1", Title: "   "})
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	stored, err := f.repo.GetByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Title)
	f.assets.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything)
}

// unreachableRepo fails the test through a nil-interface panic if any
// repository method is reached.
type unreachableRepo struct {
	persistent.BlogRepository
}

func TestMalformedBlogID_IsNotFound(t *testing.T) {
	uc := NewBlogUseCase(unreachableRepo{}, new(MockAssetStore), nil, nil, logger.New(), Options{})
	ctx := context.Background()
	const id = "not-a-uuid"

	_, err := uc.GetBlogDetail(ctx, id)
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)

	_, err = uc.UpdateBlog(ctx, UpdateBlogInput{BlogID: id, UserID: "author-1", Title: "t"})
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)

	assert.ErrorIs(t, uc.DeleteBlog(ctx, id, "author-1"), entity.ErrBlogNotFound)

	_, err = uc.AddComment(ctx, id, "reader-1", "reader", "hi")
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)

	_, err = uc.ToggleLike(ctx, id, "reader-1")
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)

	_, err = uc.IsLiked(ctx, id, "reader-1")
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)

	assert.ErrorIs(t, uc.IncrementView(ctx, id), entity.ErrBlogNotFound)
}

func TestDeleteBlog_OwnerRemovesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := f.seedBlog(t, "author-1", "Doomed", 0)
	_, err := f.uc.AddComment(ctx, blog.ID, "reader-1", "reader", "nice")
	require.NoError(t, err)
	_, err = f.uc.ToggleLike(ctx, blog.ID, "reader-1")
	require.NoError(t, err)

	f.assets.On("DeleteFile", blog.ImageKey).Return(nil).Once()

	require.NoError(t, f.uc.DeleteBlog(ctx, blog.ID, "author-1"))

	_, err = f.uc.GetBlogDetail(ctx, blog.ID)
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)

	comments, err := f.uc.TotalComments(ctx, "author-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), comments)

	liked, err := f.uc.IsLiked(ctx, blog.ID, "reader-1")
	require.NoError(t, err)
	assert.False(t, liked)
	f.assets.AssertExpectations(t)
}

func TestDeleteBlog_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	blog := f.seedBlog(t, "author-1", "Keep", 0)

	err := f.uc.DeleteBlog(context.Background(), blog.ID, "intruder")

	assert.ErrorIs(t, err, entity.ErrForbidden)
	_, err = f.repo.GetByID(context.Background(), blog.ID)
	assert.NoError(t, err)
	f.assets.AssertNotCalled(t, "DeleteFile", mock.Anything)
}

func TestDeleteBlog_AssetFailureAfterRowsRemoved(t *testing.T) {
	f := newFixture(t)
	blog := f.seedBlog(t, "author-1", "Doomed", 0)
	f.assets.On("DeleteFile", blog.ImageKey).Return(errors.New("timeout"))

	err := f.uc.DeleteBlog(context.Background(), blog.ID, "author-1")

	var deleteErr *entity.AssetDeleteError
	assert.ErrorAs(t, err, &deleteErr)
	_, err = f.repo.GetByID(context.Background(), blog.ID)
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)
}

func TestDeleteBlog_NotFound(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.uc.DeleteBlog(context.Background(), "missing", "u"), entity.ErrBlogNotFound)
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := f.seedBlog(t, "author-1", "Post", 0)

	_, err := f.uc.AddComment(ctx, blog.ID, "reader-1", "reader", "   ")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = f.uc.AddComment(ctx, "missing", "reader-1", "reader", "hi")
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)

	comment, err := f.uc.AddComment(ctx, blog.ID, "reader-1", "reader", "great read")
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "reader", comment.Username)

	_, err = f.uc.AddComment(ctx, blog.ID, "author-1", "author", "thanks")
	require.NoError(t, err)

	tasks := f.notifier.sent()
	require.Len(t, tasks, 1)
	assert.Equal(t, queue.TaskNewComment, tasks[0]["type"])
	assert.Equal(t, "author-1", tasks[0]["user_id"])
	assert.Equal(t, blog.ID, tasks[0]["blog_id"])

	detail, err := f.uc.GetBlogDetail(ctx, blog.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 2)
	assert.Empty(t, detail.Likes)
	assert.NotNil(t, detail.Likes)
}

func TestToggleLike_TwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := f.seedBlog(t, "author-1", "Post", 0)

	liked, err := f.uc.ToggleLike(ctx, blog.ID, "reader-1")
	require.NoError(t, err)
	assert.True(t, liked)

	isLiked, err := f.uc.IsLiked(ctx, blog.ID, "reader-1")
	require.NoError(t, err)
	assert.True(t, isLiked)

	liked, err = f.uc.ToggleLike(ctx, blog.ID, "reader-1")
	require.NoError(t, err)
	assert.False(t, liked)

	isLiked, err = f.uc.IsLiked(ctx, blog.ID, "reader-1")
	require.NoError(t, err)
	assert.False(t, isLiked)

	tasks := f.notifier.sent()
	require.Len(t, tasks, 1)
	assert.Equal(t, queue.TaskLike, tasks[0]["type"])
}

func TestToggleLike_MissingBlog(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.ToggleLike(context.Background(), "missing", "reader-1")
	assert.ErrorIs(t, err, entity.ErrBlogNotFound)
}

func TestAuthorStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.seedBlog(t, "author-1", "First", 4)
	second := f.seedBlog(t, "author-1", "Second", 1)
	f.seedBlog(t, "author-2", "Other", 9)

	_, err := f.uc.AddComment(ctx, first.ID, "reader-1", "r1", "one")
	require.NoError(t, err)
	_, err = f.uc.AddComment(ctx, second.ID, "reader-2", "r2", "two")
	require.NoError(t, err)
	_, err = f.uc.ToggleLike(ctx, first.ID, "reader-1")
	require.NoError(t, err)

	stats, err := f.uc.AuthorStats(ctx, "author-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBlogs)
	assert.Equal(t, int64(2), stats.TotalComments)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, int64(5), stats.TotalViews)

	likes, err := f.uc.TotalLikes(ctx, "author-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), likes)

	empty, err := f.uc.AuthorStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalBlogs)
}

func TestIncrementView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blog := f.seedBlog(t, "author-1", "Post", 0)

	require.NoError(t, f.uc.IncrementView(ctx, blog.ID))
	require.NoError(t, f.uc.IncrementView(ctx, blog.ID))

	detail, err := f.uc.GetBlogDetail(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Views)

	assert.ErrorIs(t, f.uc.IncrementView(ctx, "missing"), entity.ErrBlogNotFound)
}

func TestListings_EmptyIsSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lists := map[string]func() ([]*entity.Blog, error){
		"all":      func() ([]*entity.Blog, error) { return f.uc.ListBlogs(ctx) },
		"mine":     func() ([]*entity.Blog, error) { return f.uc.ListMyBlogs(ctx, "author-1") },
		"search":   func() ([]*entity.Blog, error) { return f.uc.SearchBlogs(ctx, "nothing") },
		"category": func() ([]*entity.Blog, error) { return f.uc.CategoryBlogs(ctx, "none") },
		"popular":  func() ([]*entity.Blog, error) { return f.uc.PopularBlogs(ctx) },
	}

	for name, list := range lists {
		blogs, err := list()
		require.NoError(t, err, name)
		assert.NotNil(t, blogs, name)
		assert.Empty(t, blogs, name)
	}
}

func TestPopularBlogs_TopThreeByViews(t *testing.T) {
	f := newFixture(t)
	f.seedBlog(t, "a", "Low", 1)
	f.seedBlog(t, "a", "High", 7)
	f.seedBlog(t, "b", "Mid", 4)
	f.seedBlog(t, "b", "Zero", 0)

	blogs, err := f.uc.PopularBlogs(context.Background())
	require.NoError(t, err)
	require.Len(t, blogs, 3)
	assert.Equal(t, "High", blogs[0].Title)
	assert.Equal(t, "Mid", blogs[1].Title)
	assert.Equal(t, "Low", blogs[2].Title)
}

func TestSearchAndCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBlog(t, "a", "Learning Go", 0)
	f.seedBlog(t, "a", "Baking", 0)

	found, err := f.uc.SearchBlogs(ctx, "  go ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Learning Go", found[0].Title)

	tech, err := f.uc.CategoryBlogs(ctx, "tech")
	require.NoError(t, err)
	assert.Len(t, tech, 2)

	mine, err := f.uc.ListMyBlogs(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDecodeDataURI(t *testing.T) {
	img, err := DecodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, pngData, img.Data)

	for _, bad := range []string{
		"",
		"image/png;base64,AAAA",
		"data:image/png,AAAA",
		"data:image/png;base64",
		"data:image/png;base64,!!!not-base64!!!",
	} {
		_, err := DecodeDataURI(bad)
		assert.ErrorIs(t, err, entity.ErrInvalidInput, bad)
	}
}

func TestPopularBlogs_CacheFollowsViews(t *testing.T) {
	f := newFixture(t)
	mr := f.withRedis(t)
	ctx := context.Background()

	f.seedBlog(t, "author-1", "Five", 5)
	f.seedBlog(t, "author-1", "Four", 4)
	f.seedBlog(t, "author-2", "Three", 3)
	riser := f.seedBlog(t, "author-2", "Riser", 0)

	popular, err := f.uc.PopularBlogs(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, "Five", popular[0].Title)
	assert.True(t, mr.Exists(popularCacheKey))
	assert.Equal(t, popularCacheTTL, mr.TTL(popularCacheKey))

	for i := 0; i < 6; i++ {
		require.NoError(t, f.uc.IncrementView(ctx, riser.ID))
	}
	assert.False(t, mr.Exists(popularCacheKey))

	popular, err = f.uc.PopularBlogs(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, riser.ID, popular[0].ID)
	assert.Equal(t, int64(6), popular[0].Views)
	assert.Equal(t, "Four", popular[2].Title)
}
