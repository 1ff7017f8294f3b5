package service

import (
	"context"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/domains/article/repository"
)

// ArticleService owns article CRUD. Mutations are restricted to the
// article's author.
type ArticleService struct {
	repo   repository.ArticleRepository
	images *ImageService
}

func NewArticleService(repo repository.ArticleRepository, images *ImageService) *ArticleService {
	return &ArticleService{repo: repo, images: images}
}

func (s *ArticleService) Get(ctx context.Context, id string) (*model.Article, error) {
	return s.repo.Get(ctx, id)
}

func (s *ArticleService) Create(ctx context.Context, authorID string, req model.CreateArticleRequest) (*model.Article, error) {
	art := &model.Article{
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
		Status:   req.Status,
		Category: req.Category,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	}
	if art.Tags == nil {
		art.Tags = []string{}
	}

	if _, err := s.repo.Create(ctx, art); err != nil {
		return nil, err
	}
	return art, nil
}

func (s *ArticleService) Update(ctx context.Context, userID, id string, req model.UpdateArticleRequest) (*model.Article, error) {
	art, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if art.AuthorID != userID {
		return nil, model.ErrNotOwner
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
		art.Title = *req.Title
	}
	if req.Content != nil {
		fields["content"] = *req.Content
		art.Content = *req.Content
	}
	if req.Status != nil {
		fields["status"] = *req.Status
		art.Status = *req.Status
	}
	if req.Category != nil {
		fields["category"] = *req.Category
		art.Category = *req.Category
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
		art.Tags = *req.Tags
	}
	if req.ImageURL != nil {
		fields["imageURL"] = *req.ImageURL
		art.ImageURL = *req.ImageURL
	}
	if len(fields) == 0 {
		return art, nil
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return art, nil
}

// Delete removes the article and schedules cleanup of its stored
// images.
func (s *ArticleService) Delete(ctx context.Context, userID, id string) error {
	art, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if art.AuthorID != userID {
		return model.ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.images.ScheduleCleanup(id)
	return nil
}
