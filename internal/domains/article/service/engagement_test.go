package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/domains/article/repository"
	"blog-backend/internal/infrastructure/docstore"
)

func newTestEngagement(t *testing.T) (*EngagementService, repository.ArticleRepository, string) {
	t.Helper()
	store := docstore.NewMemoryStore()
	repo := repository.NewArticleRepository(store)

	id, err := repo.Create(context.Background(), &model.Article{
		AuthorID: "author",
		Title:    "Post",
		Content:  "body",
		Status:   model.StatusPublished,
	})
	require.NoError(t, err)

	return NewEngagementService(repo), repo, id
}

func likesCount(t *testing.T, repo repository.ArticleRepository, id string) int {
	t.Helper()
	art, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	return art.LikesCount
}

func commentsCount(t *testing.T, repo repository.ArticleRepository, id string) int {
	t.Helper()
	art, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	return art.CommentsCount
}

func TestToggleLikeTwiceRestoresCount(t *testing.T) {
	svc, repo, id := newTestEngagement(t)
	ctx := context.Background()

	before := likesCount(t, repo, id)

	liked, err := svc.ToggleLike(ctx, "u1", id)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, before+1, likesCount(t, repo, id))

	liked, err = svc.ToggleLike(ctx, "u1", id)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, before, likesCount(t, repo, id))
}

func TestLikesAreIndependentPerUser(t *testing.T) {
	svc, repo, id := newTestEngagement(t)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "u1", id)
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, "u2", id)
	require.NoError(t, err)
	assert.Equal(t, 2, likesCount(t, repo, id))

	liked, err := svc.ToggleLike(ctx, "u1", id)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 1, likesCount(t, repo, id))
}

func TestLikedArticleIDs(t *testing.T) {
	svc, _, id := newTestEngagement(t)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "u1", id)
	require.NoError(t, err)

	ids, err := svc.LikedArticleIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	ids, err = svc.LikedArticleIDs(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestToggleLikeMissingArticle(t *testing.T) {
	svc, _, _ := newTestEngagement(t)
	_, err := svc.ToggleLike(context.Background(), "u1", "no-such-article")
	assert.ErrorIs(t, err, model.ErrArticleNotFound)
}

func TestCommentsAdjustCounter(t *testing.T) {
	svc, repo, id := newTestEngagement(t)
	ctx := context.Background()

	c1, err := svc.AddComment(ctx, "u1", id, model.CreateCommentRequest{Body: "first"})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "u2", id, model.CreateCommentRequest{Body: "second"})
	require.NoError(t, err)
	assert.Equal(t, 2, commentsCount(t, repo, id))

	require.NoError(t, svc.DeleteComment(ctx, "u1", id, c1.ID))
	assert.Equal(t, 1, commentsCount(t, repo, id))
}

func TestDeleteCommentOwnershipEnforced(t *testing.T) {
	svc, _, id := newTestEngagement(t)
	ctx := context.Background()

	c, err := svc.AddComment(ctx, "u1", id, model.CreateCommentRequest{Body: "mine"})
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, "u2", id, c.ID)
	assert.ErrorIs(t, err, model.ErrNotOwner)

	err = svc.DeleteComment(ctx, "u1", id, "no-such-comment")
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
}

func TestListCommentsOldestFirst(t *testing.T) {
	svc, _, id := newTestEngagement(t)
	ctx := context.Background()

	first, err := svc.AddComment(ctx, "u1", id, model.CreateCommentRequest{Body: "first"})
	require.NoError(t, err)
	second, err := svc.AddComment(ctx, "u2", id, model.CreateCommentRequest{Body: "second"})
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, id)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)
}
