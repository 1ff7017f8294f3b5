package service

import (
	"context"
	"sort"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/domains/article/repository"
)

// EngagementService owns comments and likes.
type EngagementService struct {
	repo repository.ArticleRepository
}

func NewEngagementService(repo repository.ArticleRepository) *EngagementService {
	return &EngagementService{repo: repo}
}

func (s *EngagementService) AddComment(ctx context.Context, userID, articleID string, req model.CreateCommentRequest) (*model.Comment, error) {
	if _, err := s.repo.Get(ctx, articleID); err != nil {
		return nil, err
	}

	c := &model.Comment{
		ArticleID: articleID,
		AuthorID:  userID,
		Body:      req.Body,
	}
	if _, err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes the caller's own comment.
func (s *EngagementService) DeleteComment(ctx context.Context, userID, articleID, commentID string) error {
	comments, err := s.repo.QueryComments(ctx, articleID)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if c.ID == commentID {
			if c.AuthorID != userID {
				return model.ErrNotOwner
			}
			return s.repo.DeleteComment(ctx, articleID, commentID)
		}
	}
	return model.ErrCommentNotFound
}

// ListComments returns an article's comments oldest first.
func (s *EngagementService) ListComments(ctx context.Context, articleID string) ([]*model.Comment, error) {
	comments, err := s.repo.QueryComments(ctx, articleID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].EffectiveCreatedAt().Before(comments[j].EffectiveCreatedAt())
	})
	return comments, nil
}

// ToggleLike flips the caller's like on the article. The returned
// bool is the resulting state: true liked, false removed.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, articleID string) (bool, error) {
	if _, err := s.repo.Get(ctx, articleID); err != nil {
		return false, err
	}
	return s.repo.ToggleLike(ctx, userID, articleID)
}

// LikedArticleIDs returns the ids of articles the user has liked, for
// painting like state on listings.
func (s *EngagementService) LikedArticleIDs(ctx context.Context, userID string) ([]string, error) {
	return s.repo.QueryLikesByUser(ctx, userID)
}
