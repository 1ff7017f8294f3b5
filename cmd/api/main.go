package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"blog-backend/internal/config"
	"blog-backend/pkg/container"
	"blog-backend/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.Environment)

	ctx := context.Background()
	c, err := container.New(ctx, cfg)
	if err != nil {
		logger.Error("build container", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := runServer(c); err != nil {
		logger.Error("server stopped", err)
		os.Exit(1)
	}
}
