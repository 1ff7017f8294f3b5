package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"blog-backend/internal/shared"
)

// Client enqueues background image jobs.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, redisPassword string, redisDB int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

// EnqueueProcessArticleImage schedules variant generation for a
// freshly uploaded original.
func (c *Client) EnqueueProcessArticleImage(articleID, key string) error {
	payload, err := json.Marshal(shared.ProcessArticleImagePayload{
		ArticleID: articleID,
		Key:       key,
	})
	if err != nil {
		return err
	}
	task := asynq.NewTask(shared.TypeProcessArticleImage, payload)
	_, err = c.client.Enqueue(task,
		asynq.Queue(shared.QueueImages),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeProcessArticleImage, err)
	}
	return nil
}

// EnqueueDeleteArticleImages schedules blob cleanup after an article
// is removed.
func (c *Client) EnqueueDeleteArticleImages(articleID, prefix string) error {
	payload, err := json.Marshal(shared.DeleteArticleImagesPayload{
		ArticleID: articleID,
		Prefix:    prefix,
	})
	if err != nil {
		return err
	}
	task := asynq.NewTask(shared.TypeDeleteArticleImages, payload)
	_, err = c.client.Enqueue(task,
		asynq.Queue(shared.QueueImages),
		asynq.MaxRetry(5),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeDeleteArticleImages, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
