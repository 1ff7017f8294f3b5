package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/domains/account"
	"blog-backend/internal/infrastructure/docstore"
)

func newTestRepo() account.Repository {
	return NewAccountRepository(docstore.NewMemoryStore())
}

func create(t *testing.T, repo account.Repository, id, name string, verified bool) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &account.Account{
		ID:            id,
		Email:         id + "@example.com",
		DisplayName:   name,
		EmailVerified: verified,
	}))
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	create(t, repo, "u1", "Alice", true)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.Equal(t, "alice", got.DisplayNameLower)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestCreateRejectsNameHeldByVerifiedAccount(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	create(t, repo, "u1", "Alice", true)

	err := repo.Create(ctx, &account.Account{ID: "u2", DisplayName: "alice", EmailVerified: false})
	assert.ErrorIs(t, err, account.ErrDuplicateDisplayName)
}

func TestCreateAllowsNameHeldByUnverifiedAccount(t *testing.T) {
	repo := newTestRepo()
	create(t, repo, "u1", "Alice", false)
	create(t, repo, "u2", "Alice", true)
}

func TestCreateMergesExistingRecord(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	create(t, repo, "u1", "Alice", false)
	first, err := repo.Get(ctx, "u1")
	require.NoError(t, err)

	// A repeat social sign-in re-creates under the same id; the
	// record merges and keeps its creation time.
	require.NoError(t, repo.Create(ctx, &account.Account{
		ID:            "u1",
		Email:         "u1@example.com",
		DisplayName:   "Alice",
		PhotoURL:      "https://example.com/p.png",
		EmailVerified: true,
	}))

	merged, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, merged.EmailVerified)
	assert.Equal(t, "https://example.com/p.png", merged.PhotoURL)
	assert.True(t, merged.CreatedAt.Equal(first.CreatedAt))
}

func TestUpdateChecksOnlyChangedName(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	create(t, repo, "u1", "Alice", true)
	create(t, repo, "u2", "Bob", true)

	taken := "Alice"
	_, err := repo.Update(ctx, "u2", account.ProfilePatch{DisplayName: &taken})
	assert.ErrorIs(t, err, account.ErrDuplicateDisplayName)

	same := "Bob"
	bio := "hello"
	updated, err := repo.Update(ctx, "u2", account.ProfilePatch{DisplayName: &same, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Bob", updated.DisplayName)
	assert.Equal(t, "hello", updated.Bio)
}

func TestSetEmailVerified(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	create(t, repo, "u1", "Alice", false)
	require.NoError(t, repo.SetEmailVerified(ctx, "u1", true))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	assert.ErrorIs(t, repo.SetEmailVerified(ctx, "missing", true), account.ErrAccountNotFound)
}

func TestDisplayNameExists(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	create(t, repo, "u1", "Alice", true)
	create(t, repo, "u2", "Bob", false)

	exists, err := repo.DisplayNameExists(ctx, "ALICE", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.DisplayNameExists(ctx, "Alice", "u1")
	require.NoError(t, err)
	assert.False(t, exists, "the owner's own record is not a collision")

	exists, err = repo.DisplayNameExists(ctx, "Bob", "")
	require.NoError(t, err)
	assert.False(t, exists, "unverified holders do not count")

	exists, err = repo.DisplayNameExists(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	create(t, repo, "u1", "Alice", true)
	require.NoError(t, repo.Delete(ctx, "u1"))

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}
