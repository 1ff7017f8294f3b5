package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"blog-backend/internal/config"
	"blog-backend/internal/infrastructure/storage"
	"blog-backend/internal/shared"
	"blog-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.Environment)

	blobs, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		logger.Error("connect minio", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				shared.QueueImages:  6,
				shared.QueueDefault: 4,
			},
		},
	)

	processor := newImageTaskProcessor(blobs)

	mux := asynq.NewServeMux()
	mux.HandleFunc(shared.TypeProcessArticleImage, processor.HandleProcessArticleImage)
	mux.HandleFunc(shared.TypeDeleteArticleImages, processor.HandleDeleteArticleImages)

	if err := srv.Start(mux); err != nil {
		logger.Error("start worker", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("worker shutting down", map[string]interface{}{"signal": sig.String()})

	srv.Shutdown()
}
