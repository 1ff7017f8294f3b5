package repository

import (
	"context"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/infrastructure/docstore"
)

// ArticleRepository is the article data access contract. Query methods
// return rows in the store's scan order; callers do their own display
// sorting.
type ArticleRepository interface {
	Get(ctx context.Context, id string) (*model.Article, error)
	Create(ctx context.Context, art *model.Article) (string, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	// QueryPublished pages through published articles. The returned
	// slice holds at most pageSize rows in scan order.
	QueryPublished(ctx context.Context, pageSize int, cursor *docstore.Cursor) ([]*model.Article, error)

	// QueryByAuthor returns every article by the author, drafts
	// included.
	QueryByAuthor(ctx context.Context, authorID string) ([]*model.Article, error)

	// QueryFiltered narrows published articles by category and tags.
	// Empty filters are skipped.
	QueryFiltered(ctx context.Context, category string, tags []string) ([]*model.Article, error)

	// ScanAll reads the whole collection without predicates. Serves
	// the degraded listing path when filtered queries fail.
	ScanAll(ctx context.Context) ([]*model.Article, error)

	CreateComment(ctx context.Context, c *model.Comment) (string, error)
	DeleteComment(ctx context.Context, articleID, commentID string) error
	QueryComments(ctx context.Context, articleID string) ([]*model.Comment, error)

	// ToggleLike flips the caller's like on the article and moves
	// likesCount accordingly. Returns the resulting liked state.
	ToggleLike(ctx context.Context, userID, articleID string) (bool, error)

	// QueryLikesByUser returns the ids of articles the user has liked.
	QueryLikesByUser(ctx context.Context, userID string) ([]string, error)
}
