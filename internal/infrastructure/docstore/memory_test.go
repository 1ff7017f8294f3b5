package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func TestMemoryStoreGetSet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "docs", "a", testDoc{Name: "one"}))

	var got testDoc
	require.NoError(t, store.Get(ctx, "docs", "a", &got))
	assert.Equal(t, "one", got.Name)

	err := store.Get(ctx, "docs", "missing", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "docs", "a", testDoc{Name: "one", Count: 1}))
	require.NoError(t, store.Update(ctx, "docs", "a", map[string]interface{}{"name": "two"}))

	var got testDoc
	require.NoError(t, store.Get(ctx, "docs", "a", &got))
	assert.Equal(t, "two", got.Name)
	assert.Equal(t, 1, got.Count, "untouched fields survive the merge")

	err := store.Update(ctx, "docs", "missing", map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "docs", "a", testDoc{Name: "one"}))
	require.NoError(t, store.Delete(ctx, "docs", "a"))
	require.NoError(t, store.Delete(ctx, "docs", "a"))

	var got testDoc
	assert.ErrorIs(t, store.Get(ctx, "docs", "a", &got), ErrNotFound)
}

func TestMemoryStoreAddGeneratesIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id1, err := store.Add(ctx, "docs", testDoc{Name: "one"})
	require.NoError(t, err)
	id2, err := store.Add(ctx, "docs", testDoc{Name: "two"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestMemoryStoreQueryScanOrderNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Set(ctx, "docs", fmt.Sprintf("d%d", i), testDoc{Name: fmt.Sprintf("n%d", i)}))
	}

	docs, err := store.Query(ctx, "docs", Query{})
	require.NoError(t, err)
	require.Len(t, docs, 5)
	assert.Equal(t, "d5", docs[0].ID)
	assert.Equal(t, "d1", docs[4].ID)
}

func TestMemoryStoreReplaceKeepsScanPosition(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "docs", "a", testDoc{Name: "one"}))
	require.NoError(t, store.Set(ctx, "docs", "b", testDoc{Name: "two"}))
	require.NoError(t, store.Set(ctx, "docs", "a", testDoc{Name: "one again"}))

	docs, err := store.Query(ctx, "docs", Query{})
	require.NoError(t, err)
	assert.Equal(t, "b", docs[0].ID, "replacing a document must not move it to the front")
}

func TestMemoryStoreQueryCursorResumesAfterRow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Set(ctx, "docs", fmt.Sprintf("d%d", i), testDoc{Name: "n"}))
	}

	first, err := store.Query(ctx, "docs", Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)

	rest, err := store.Query(ctx, "docs", Query{Cursor: &Cursor{LastID: first[1].ID}})
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.Equal(t, "d3", rest[0].ID)

	// A cursor naming a row the predicate no longer matches resumes
	// past the end rather than restarting.
	none, err := store.Query(ctx, "docs", Query{Cursor: &Cursor{LastID: "gone"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreQueryPredicates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "docs", "a", testDoc{Name: "x", Tags: []string{"go", "db"}}))
	require.NoError(t, store.Set(ctx, "docs", "b", testDoc{Name: "y", Tags: []string{"web"}}))

	docs, err := store.Query(ctx, "docs", Query{
		Predicates: []Predicate{Where("name", OpEqual, "x")},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].ID)

	docs, err = store.Query(ctx, "docs", Query{
		Predicates: []Predicate{Where("tags", OpArrayContainsAny, []string{"web", "cli"})},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].ID)
}

func TestMemoryStoreIncrement(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "docs", "a", testDoc{Count: 1}))
	require.NoError(t, store.Increment(ctx, "docs", "a", "count", 2))
	require.NoError(t, store.Increment(ctx, "docs", "a", "count", -1))

	var got testDoc
	require.NoError(t, store.Get(ctx, "docs", "a", &got))
	assert.Equal(t, 2, got.Count)

	assert.ErrorIs(t, store.Increment(ctx, "docs", "missing", "count", 1), ErrNotFound)
}

func TestMemoryStoreFailQueryHook(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "docs", "a", testDoc{Name: "x"}))

	boom := errors.New("boom")
	store.FailQuery = func(collection string, q Query) error {
		if len(q.Predicates) > 0 {
			return boom
		}
		return nil
	}

	_, err := store.Query(ctx, "docs", Query{Predicates: []Predicate{Where("name", OpEqual, "x")}})
	assert.ErrorIs(t, err, boom)

	docs, err := store.Query(ctx, "docs", Query{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
