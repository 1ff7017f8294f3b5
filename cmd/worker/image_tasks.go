package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/hibiken/asynq"

	"blog-backend/internal/infrastructure/storage"
	"blog-backend/internal/shared"
	"blog-backend/pkg/logger"
)

// imageTaskProcessor generates resized variants for uploaded article
// images and cleans up blobs for deleted articles.
type imageTaskProcessor struct {
	blobs     *storage.MinIOStorage
	processor *storage.ImageProcessor
}

func newImageTaskProcessor(blobs *storage.MinIOStorage) *imageTaskProcessor {
	return &imageTaskProcessor{
		blobs:     blobs,
		processor: storage.NewImageProcessor(),
	}
}

func (p *imageTaskProcessor) HandleProcessArticleImage(ctx context.Context, t *asynq.Task) error {
	var payload shared.ProcessArticleImagePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	data, err := p.blobs.Download(ctx, payload.Key)
	if err != nil {
		return fmt.Errorf("download original: %w", err)
	}

	variants, err := p.processor.ProcessImage(data)
	if err != nil {
		// Not an image anymore; retrying cannot fix the payload.
		return fmt.Errorf("process image: %v: %w", err, asynq.SkipRetry)
	}

	dir := path.Dir(payload.Key)
	base := strings.TrimPrefix(path.Base(payload.Key), "original-")
	for name, body := range variants {
		key := path.Join(dir, fmt.Sprintf("%s-%s", name, base))
		if _, err := p.blobs.Upload(ctx, key, body, "image/jpeg"); err != nil {
			return fmt.Errorf("upload %s variant: %w", name, err)
		}
	}

	logger.Info("article image variants stored", map[string]interface{}{
		"article_id": payload.ArticleID,
		"variants":   len(variants),
	})
	return nil
}

func (p *imageTaskProcessor) HandleDeleteArticleImages(ctx context.Context, t *asynq.Task) error {
	var payload shared.DeleteArticleImagesPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := p.blobs.DeleteByPrefix(ctx, payload.Prefix); err != nil {
		return fmt.Errorf("delete article images: %w", err)
	}

	logger.Info("article images removed", map[string]interface{}{
		"article_id": payload.ArticleID,
	})
	return nil
}
