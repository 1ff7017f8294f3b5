package taxonomy

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/domains/article/model"
	"blog-backend/internal/domains/article/repository"
	rediscache "blog-backend/internal/infrastructure/cache"
	"blog-backend/internal/infrastructure/docstore"
)

func newTestService(t *testing.T) (*Service, *docstore.MemoryStore, *miniredis.Miniredis) {
	t.Helper()
	store := docstore.NewMemoryStore()
	repo := repository.NewArticleRepository(store)
	mr := miniredis.RunT(t)
	c := rediscache.NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return NewService(repo, c, time.Minute), store, mr
}

func seed(t *testing.T, store *docstore.MemoryStore, id string, art model.Article) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), model.Collection, id, art))
}

func TestListCategoriesNameSorted(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store, "a", model.Article{Status: model.StatusPublished, Category: "tech"})
	seed(t, store, "b", model.Article{Status: model.StatusPublished, Category: "art"})
	seed(t, store, "c", model.Article{Status: model.StatusPublished, Category: "tech"})
	seed(t, store, "d", model.Article{Status: model.StatusDraft, Category: "hidden"})

	got, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"art", "tech"}, got)
}

func TestListTagsNameSorted(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store, "a", model.Article{Status: model.StatusPublished, Tags: []string{"go", "backend"}})
	seed(t, store, "b", model.Article{Status: model.StatusPublished, Tags: []string{"go", "api"}})

	got, err := svc.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "backend", "go"}, got)
}

func TestListCategoriesServedFromCache(t *testing.T) {
	svc, store, _ := newTestService(t)
	seed(t, store, "a", model.Article{Status: model.StatusPublished, Category: "tech"})

	first, err := svc.ListCategories(context.Background())
	require.NoError(t, err)

	// New articles are invisible until the cache expires or is
	// invalidated.
	seed(t, store, "b", model.Article{Status: model.StatusPublished, Category: "art"})
	cached, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	svc.Invalidate(context.Background())
	fresh, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"art", "tech"}, fresh)
}
