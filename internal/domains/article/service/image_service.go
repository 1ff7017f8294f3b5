package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/domains/article/repository"
	"blog-backend/internal/infrastructure/storage"
	"blog-backend/pkg/logger"
)

// BlobStorage is the object-store surface the image flow needs.
type BlobStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ImageQueue schedules background image jobs.
type ImageQueue interface {
	EnqueueProcessArticleImage(articleID, key string) error
	EnqueueDeleteArticleImages(articleID, prefix string) error
}

// ImageService validates and stores article images. Validation runs
// before any network call; variant generation happens on the worker.
type ImageService struct {
	repo      repository.ArticleRepository
	blobs     BlobStorage
	queue     ImageQueue
	processor *storage.ImageProcessor
}

func NewImageService(repo repository.ArticleRepository, blobs BlobStorage, queue ImageQueue) *ImageService {
	return &ImageService{
		repo:      repo,
		blobs:     blobs,
		queue:     queue,
		processor: storage.NewImageProcessor(),
	}
}

// ImagePrefix is where an article's original and variants live.
func ImagePrefix(articleID string) string {
	return fmt.Sprintf("articles/%s/", articleID)
}

// Upload stores the original under the article's prefix, records the
// URL on the article and schedules variant generation. Only the
// author may attach images.
func (s *ImageService) Upload(ctx context.Context, userID, articleID string, data []byte, contentType string) (string, error) {
	art, err := s.repo.Get(ctx, articleID)
	if err != nil {
		return "", err
	}
	if art.AuthorID != userID {
		return "", model.ErrNotOwner
	}

	if err := s.processor.ValidateImage(data); err != nil {
		return "", err
	}

	key := path.Join(ImagePrefix(articleID), fmt.Sprintf("original-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8]))
	url, err := s.blobs.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	if err := s.repo.Update(ctx, articleID, map[string]interface{}{"imageURL": url}); err != nil {
		return "", err
	}

	if err := s.queue.EnqueueProcessArticleImage(articleID, key); err != nil {
		logger.Warn("variant generation not scheduled", map[string]interface{}{
			"article_id": articleID,
			"error":      err.Error(),
		})
	}
	return url, nil
}

// ScheduleCleanup enqueues removal of everything stored for the
// article. Failures are logged; the article deletion has already
// happened and must not be rolled back over blob cleanup.
func (s *ImageService) ScheduleCleanup(articleID string) {
	if err := s.queue.EnqueueDeleteArticleImages(articleID, ImagePrefix(articleID)); err != nil {
		logger.Warn("image cleanup not scheduled", map[string]interface{}{
			"article_id": articleID,
			"error":      err.Error(),
		})
	}
}
