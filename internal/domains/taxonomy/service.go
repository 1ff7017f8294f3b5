package taxonomy

import (
	"context"
	"sort"
	"time"

	"blog-backend/internal/domains/article/repository"
	"blog-backend/pkg/cache"
	"blog-backend/pkg/logger"
)

const (
	categoriesCacheKey = "taxonomy:categories"
	tagsCacheKey       = "taxonomy:tags"
)

// Service derives the category and tag vocabularies from published
// articles, read through a cache-aside layer so listings do not scan
// the collection on every request.
type Service struct {
	articles repository.ArticleRepository
	cache    cache.Cache
	ttl      time.Duration
}

func NewService(articles repository.ArticleRepository, c cache.Cache, ttl time.Duration) *Service {
	return &Service{articles: articles, cache: c, ttl: ttl}
}

// ListCategories returns the distinct categories of published
// articles, name-sorted.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	var cached []string
	if found, err := s.cache.Get(ctx, categoriesCacheKey, &cached); err == nil && found {
		return cached, nil
	}

	arts, err := s.articles.QueryFiltered(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	for _, art := range arts {
		if art.Category != "" {
			set[art.Category] = true
		}
	}
	categories := sortedKeys(set)

	if err := s.cache.Set(ctx, categoriesCacheKey, categories, s.ttl); err != nil {
		logger.Warn("category cache not updated", map[string]interface{}{"error": err.Error()})
	}
	return categories, nil
}

// ListTags returns the distinct tags of published articles,
// name-sorted.
func (s *Service) ListTags(ctx context.Context) ([]string, error) {
	var cached []string
	if found, err := s.cache.Get(ctx, tagsCacheKey, &cached); err == nil && found {
		return cached, nil
	}

	arts, err := s.articles.QueryFiltered(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	for _, art := range arts {
		for _, tag := range art.Tags {
			if tag != "" {
				set[tag] = true
			}
		}
	}
	tags := sortedKeys(set)

	if err := s.cache.Set(ctx, tagsCacheKey, tags, s.ttl); err != nil {
		logger.Warn("tag cache not updated", map[string]interface{}{"error": err.Error()})
	}
	return tags, nil
}

// Invalidate drops both cached vocabularies. Called after article
// writes that may change them.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, categoriesCacheKey, tagsCacheKey); err != nil {
		logger.Warn("taxonomy cache not invalidated", map[string]interface{}{"error": err.Error()})
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
