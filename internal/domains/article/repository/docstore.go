package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/infrastructure/docstore"
)

// articleRepository implements ArticleRepository on the document
// store.
type articleRepository struct {
	store docstore.Store
}

func NewArticleRepository(store docstore.Store) ArticleRepository {
	return &articleRepository{store: store}
}

func (r *articleRepository) Get(ctx context.Context, id string) (*model.Article, error) {
	var art model.Article
	err := r.store.Get(ctx, model.Collection, id, &art)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, model.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	art.ID = id
	return &art, nil
}

func (r *articleRepository) Create(ctx context.Context, art *model.Article) (string, error) {
	now := time.Now()
	art.CreatedAt = now
	art.UpdatedAt = now
	art.LikesCount = 0
	art.CommentsCount = 0

	id, err := r.store.Add(ctx, model.Collection, art)
	if err != nil {
		return "", fmt.Errorf("create article: %w", err)
	}
	art.ID = id
	return id, nil
}

func (r *articleRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updatedAt"] = time.Now()
	err := r.store.Update(ctx, model.Collection, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return model.ErrArticleNotFound
	}
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, model.Collection, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (r *articleRepository) QueryPublished(ctx context.Context, pageSize int, cursor *docstore.Cursor) ([]*model.Article, error) {
	docs, err := r.store.Query(ctx, model.Collection, docstore.Query{
		Predicates: []docstore.Predicate{
			docstore.Where("status", docstore.OpEqual, model.StatusPublished),
		},
		Cursor: cursor,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("query published: %w", err)
	}
	return decodeArticles(docs)
}

func (r *articleRepository) QueryByAuthor(ctx context.Context, authorID string) ([]*model.Article, error) {
	docs, err := r.store.Query(ctx, model.Collection, docstore.Query{
		Predicates: []docstore.Predicate{
			docstore.Where("authorId", docstore.OpEqual, authorID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query by author: %w", err)
	}
	return decodeArticles(docs)
}

func (r *articleRepository) QueryFiltered(ctx context.Context, category string, tags []string) ([]*model.Article, error) {
	preds := []docstore.Predicate{
		docstore.Where("status", docstore.OpEqual, model.StatusPublished),
	}
	if category != "" {
		preds = append(preds, docstore.Where("category", docstore.OpEqual, category))
	}
	if len(tags) > 0 {
		preds = append(preds, docstore.Where("tags", docstore.OpArrayContainsAny, tags))
	}

	docs, err := r.store.Query(ctx, model.Collection, docstore.Query{Predicates: preds})
	if err != nil {
		return nil, fmt.Errorf("query filtered: %w", err)
	}
	return decodeArticles(docs)
}

func (r *articleRepository) ScanAll(ctx context.Context) ([]*model.Article, error) {
	docs, err := r.store.Query(ctx, model.Collection, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("scan articles: %w", err)
	}
	return decodeArticles(docs)
}

func (r *articleRepository) CreateComment(ctx context.Context, c *model.Comment) (string, error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	id, err := r.store.Add(ctx, model.CommentsCollection, c)
	if err != nil {
		return "", fmt.Errorf("create comment: %w", err)
	}
	c.ID = id

	if err := r.store.Increment(ctx, model.Collection, c.ArticleID, model.FieldCommentsCount, 1); err != nil {
		return "", fmt.Errorf("bump comment count: %w", err)
	}
	return id, nil
}

func (r *articleRepository) DeleteComment(ctx context.Context, articleID, commentID string) error {
	var c model.Comment
	err := r.store.Get(ctx, model.CommentsCollection, commentID, &c)
	if errors.Is(err, docstore.ErrNotFound) {
		return model.ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("get comment: %w", err)
	}
	if c.ArticleID != articleID {
		return model.ErrCommentNotFound
	}

	if err := r.store.Delete(ctx, model.CommentsCollection, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if err := r.store.Increment(ctx, model.Collection, articleID, model.FieldCommentsCount, -1); err != nil {
		return fmt.Errorf("drop comment count: %w", err)
	}
	return nil
}

func (r *articleRepository) QueryComments(ctx context.Context, articleID string) ([]*model.Comment, error) {
	docs, err := r.store.Query(ctx, model.CommentsCollection, docstore.Query{
		Predicates: []docstore.Predicate{
			docstore.Where("articleId", docstore.OpEqual, articleID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}

	comments := make([]*model.Comment, 0, len(docs))
	for _, doc := range docs {
		var c model.Comment
		if err := doc.Decode(&c); err != nil {
			continue
		}
		c.ID = doc.ID
		comments = append(comments, &c)
	}
	return comments, nil
}

// ToggleLike reads the composite-keyed like row to decide direction,
// then writes the row and counter. The two writes are not atomic
// together; the row key keeps repeat toggles from double-counting.
func (r *articleRepository) ToggleLike(ctx context.Context, userID, articleID string) (bool, error) {
	likeID := model.LikeID(userID, articleID)

	var existing model.Like
	err := r.store.Get(ctx, model.LikesCollection, likeID, &existing)
	switch {
	case err == nil:
		if err := r.store.Delete(ctx, model.LikesCollection, likeID); err != nil {
			return false, fmt.Errorf("remove like: %w", err)
		}
		if err := r.store.Increment(ctx, model.Collection, articleID, model.FieldLikesCount, -1); err != nil {
			return false, fmt.Errorf("drop like count: %w", err)
		}
		return false, nil
	case errors.Is(err, docstore.ErrNotFound):
		like := model.Like{
			UserID:    userID,
			ArticleID: articleID,
			CreatedAt: time.Now(),
		}
		if err := r.store.Set(ctx, model.LikesCollection, likeID, like); err != nil {
			return false, fmt.Errorf("store like: %w", err)
		}
		if err := r.store.Increment(ctx, model.Collection, articleID, model.FieldLikesCount, 1); err != nil {
			return false, fmt.Errorf("bump like count: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("read like: %w", err)
	}
}

func (r *articleRepository) QueryLikesByUser(ctx context.Context, userID string) ([]string, error) {
	docs, err := r.store.Query(ctx, model.LikesCollection, docstore.Query{
		Predicates: []docstore.Predicate{
			docstore.Where("userId", docstore.OpEqual, userID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		var like model.Like
		if err := doc.Decode(&like); err != nil {
			continue
		}
		ids = append(ids, like.ArticleID)
	}
	return ids, nil
}

func decodeArticles(docs []docstore.Document) ([]*model.Article, error) {
	articles := make([]*model.Article, 0, len(docs))
	for _, doc := range docs {
		var art model.Article
		if err := doc.Decode(&art); err != nil {
			continue
		}
		art.ID = doc.ID
		articles = append(articles, &art)
	}
	return articles, nil
}
