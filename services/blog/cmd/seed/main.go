package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"blog-service/pkg/cache"
	"blog-service/pkg/config"
	"blog-service/pkg/database"
	"blog-service/pkg/logger"
	"blog-service/pkg/s3"
	"blog-service/services/blog/internal/repo/persistent"
	"blog-service/services/blog/internal/usecase"

	"github.com/google/uuid"
)

type seedUser struct {
	id       string
	username string
}

var categories = []string{"tech", "travel", "food", "lifestyle"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, popular cache will not be invalidated: %v", err)
		redisClient = nil
	}

	blogUseCase := usecase.NewBlogUseCase(persistent.NewBlogRepository(db), s3Client, redisClient, nil, log, usecase.Options{
		ImageFolder:   cfg.BlogImageFolder,
		MaxImageBytes: int64(cfg.MaxImageSizeMB) << 20,
	})

	if err := seedDatabase(context.Background(), blogUseCase, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(ctx context.Context, uc usecase.BlogUseCase, log *logger.Logger) error {
	existing, err := uc.ListBlogs(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("Found %d blogs, skipping seed", len(existing))
		return nil
	}

	users := []seedUser{
		{uuid.NewString(), "alice"},
		{uuid.NewString(), "bob"},
		{uuid.NewString(), "charlie"},
	}

	var blogIDs []string
	for u, user := range users {
		for i := 0; i < 2+u; i++ {
			category := categories[(u+i)%len(categories)]
			img, err := placeholderPNG(u*10 + i)
			if err != nil {
				return fmt.Errorf("failed to render placeholder: %w", err)
			}

			blog, err := uc.CreateBlog(ctx, usecase.CreateBlogInput{
				UserID:      user.id,
				Title:       fmt.Sprintf("%s's %s notes #%d", user.username, category, i+1),
				Description: fmt.Sprintf("Sample %s post number %d written by %s.", category, i+1, user.username),
				Category:    category,
				Image:       &usecase.ImageUpload{Filename: "seed.png", Data: img},
			})
			if err != nil {
				log.Error("Failed to create blog %d for %s: %v", i+1, user.username, err)
				continue
			}

			log.Info("Created blog: %s", blog.Title)
			blogIDs = append(blogIDs, blog.ID)
		}
	}

	for i, blogID := range blogIDs {
		for j, user := range users {
			if (i+j)%2 == 0 {
				if _, err := uc.AddComment(ctx, blogID, user.id, user.username, fmt.Sprintf("Great read, %s here!", user.username)); err != nil {
					log.Error("Failed to comment on %s: %v", blogID, err)
				}
			}
			if (i+j)%3 != 0 {
				if _, err := uc.ToggleLike(ctx, blogID, user.id); err != nil {
					log.Error("Failed to like %s: %v", blogID, err)
				}
			}
		}
		for v := 0; v < i%4; v++ {
			if err := uc.IncrementView(ctx, blogID); err != nil {
				log.Error("Failed to record view on %s: %v", blogID, err)
			}
		}
	}

	log.Info("Seeded %d blogs for %d users", len(blogIDs), len(users))
	return nil
}

// placeholderPNG renders a small solid-colour cover image.
func placeholderPNG(seed int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	fill := color.RGBA{R: uint8(40 + seed*37%200), G: uint8(80 + seed*53%160), B: uint8(120 + seed*29%120), A: 255}
	for y := 0; y < 36; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
