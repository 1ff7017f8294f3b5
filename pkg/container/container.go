package container

import (
	"context"
	"fmt"

	"blog-backend/internal/config"
	accounthandler "blog-backend/internal/domains/account/handler"
	accountrepo "blog-backend/internal/domains/account/repository"
	accountservice "blog-backend/internal/domains/account/service"
	articlehandler "blog-backend/internal/domains/article/handler"
	articlerepo "blog-backend/internal/domains/article/repository"
	articleservice "blog-backend/internal/domains/article/service"
	"blog-backend/internal/domains/taxonomy"
	rediscache "blog-backend/internal/infrastructure/cache"
	"blog-backend/internal/infrastructure/database"
	"blog-backend/internal/infrastructure/docstore"
	"blog-backend/internal/infrastructure/identity"
	"blog-backend/internal/infrastructure/queue"
	"blog-backend/internal/infrastructure/storage"
	"blog-backend/pkg/logger"
)

// Container wires configuration, infrastructure, repositories,
// services and handlers together for the API server.
type Container struct {
	Config *config.Config

	DB    *database.PostgresDB
	Store docstore.Store
	Cache *rediscache.RedisCache
	Blobs *storage.MinIOStorage
	Queue *queue.Client

	Provider identity.Provider

	Reconciler *accountservice.Reconciler
	Catalog    *articleservice.CatalogService
	Taxonomy   *taxonomy.Service

	AccountHandler  *accounthandler.AccountHandler
	ArticleHandler  *articlehandler.ArticleHandler
	TaxonomyHandler *taxonomy.Handler
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.DB = db

	store := docstore.NewPostgresStore(db.Pool)
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate document store: %w", err)
	}
	c.Store = store

	c.Cache = rediscache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	blobs, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	c.Blobs = blobs

	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	c.Provider = identity.NewMockProvider(cfg.Identity.SessionSecret)

	accountRepo := accountrepo.NewAccountRepository(c.Store)
	articleRepo := articlerepo.NewArticleRepository(c.Store)

	registry := accountservice.NewRegistry(accountRepo)
	c.Reconciler = accountservice.NewReconciler(c.Provider, accountRepo, registry)
	if err := c.Reconciler.Init(ctx); err != nil {
		return nil, fmt.Errorf("init session reconciler: %w", err)
	}

	c.Catalog = articleservice.NewCatalogService(articleRepo)
	engagement := articleservice.NewEngagementService(articleRepo)
	images := articleservice.NewImageService(articleRepo, c.Blobs, c.Queue)
	articles := articleservice.NewArticleService(articleRepo, images)

	c.Taxonomy = taxonomy.NewService(articleRepo, c.Cache, cfg.Catalog.TaxonomyTTL)

	c.AccountHandler = accounthandler.NewAccountHandler(c.Reconciler)
	c.ArticleHandler = articlehandler.NewArticleHandler(
		articles, c.Catalog, engagement, images, cfg.Catalog.DefaultPageSize)
	c.TaxonomyHandler = taxonomy.NewHandler(c.Taxonomy)

	return c, nil
}

// Close releases the container's connections.
func (c *Container) Close() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			logger.Error("close queue client", err)
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Error("close redis", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
