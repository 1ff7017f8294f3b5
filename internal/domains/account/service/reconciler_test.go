package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/domains/account"
	accountrepo "blog-backend/internal/domains/account/repository"
	"blog-backend/internal/infrastructure/docstore"
	"blog-backend/internal/infrastructure/identity"
)

func newTestReconciler(t *testing.T) (*Reconciler, *identity.MockProvider, account.Repository, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	repo := accountrepo.NewAccountRepository(store)
	provider := identity.NewMockProvider("test-secret")
	return NewReconciler(provider, repo, NewRegistry(repo)), provider, repo, store
}

func TestNotAuthenticatedBeforeInit(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)
	assert.False(t, r.IsAuthenticated())
	assert.False(t, r.VerificationRequired())
}

func TestInitResolvesWhileSignedOut(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Init(ctx))

	snap := r.CurrentSnapshot()
	assert.Nil(t, snap.Session)
	assert.False(t, snap.Authenticated)
}

func TestInitResolvesExactlyOnce(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Init(ctx))
	// A second call must not block or re-subscribe.
	require.NoError(t, r.Init(ctx))
}

func TestSignUpCreatesProfileWithReservedName(t *testing.T) {
	r, _, repo, _ := newTestReconciler(t)
	ctx := context.Background()

	seedAccount(t, repo, "other", "Alice", true)

	require.NoError(t, r.SignUpWithEmail(ctx, "new@example.com", "secret1", "Alice"))

	snap := r.CurrentSnapshot()
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "Alice2", snap.Profile.DisplayName)

	stored, err := repo.Get(ctx, snap.Session.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alice2", stored.DisplayName)
}

func TestSignUpUnverifiedIsNotAuthenticated(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))

	assert.False(t, r.IsAuthenticated())
	assert.True(t, r.VerificationRequired())
}

func TestSignInWithUnverifiedEmailReportsVerificationRequired(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))
	require.NoError(t, r.SignOut(ctx))

	err := r.SignInWithEmail(ctx, "u@example.com", "secret1")
	assert.ErrorIs(t, err, account.ErrVerificationRequired)

	// The session is kept, just not elevated.
	assert.NotNil(t, r.CurrentSnapshot().Session)
	assert.False(t, r.IsAuthenticated())
}

func TestSignInWithVerifiedEmailAuthenticates(t *testing.T) {
	r, provider, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))
	require.NoError(t, r.SignOut(ctx))
	provider.MarkVerified("u@example.com")

	require.NoError(t, r.SignInWithEmail(ctx, "u@example.com", "secret1"))
	assert.True(t, r.IsAuthenticated())
	assert.False(t, r.VerificationRequired())
}

func TestSocialSignInIsImmediatelyAuthenticated(t *testing.T) {
	r, provider, repo, _ := newTestReconciler(t)
	ctx := context.Background()
	provider.SocialProfile.Email = "g@example.com"
	provider.SocialProfile.DisplayName = "Gee"

	require.NoError(t, r.SignInWithGoogle(ctx))

	assert.True(t, r.IsAuthenticated())
	assert.False(t, r.VerificationRequired())

	snap := r.CurrentSnapshot()
	stored, err := repo.Get(ctx, snap.Session.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Gee", stored.DisplayName)
	assert.True(t, stored.EmailVerified)
}

func TestSignInWrongPasswordMapsProviderError(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))
	require.NoError(t, r.SignOut(ctx))

	err := r.SignInWithEmail(ctx, "u@example.com", "wrong-pass")
	var provErr *account.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, identity.CodeWrongPassword, provErr.Code)
	assert.Equal(t, "The password is incorrect", provErr.Message)
}

func TestCheckVerificationPersistsObservedChange(t *testing.T) {
	r, provider, repo, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))
	uid := r.CurrentSnapshot().Session.UserID

	verified, err := r.CheckVerification(ctx)
	require.NoError(t, err)
	assert.False(t, verified)

	// The user clicks the emailed link.
	provider.MarkVerified("u@example.com")

	verified, err = r.CheckVerification(ctx)
	require.NoError(t, err)
	assert.True(t, verified)
	assert.True(t, r.IsAuthenticated())

	stored, err := repo.Get(ctx, uid)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
}

func TestSnapshotProfileIsNotMutatedByLaterChecks(t *testing.T) {
	r, provider, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))

	before := r.CurrentSnapshot()
	require.NotNil(t, before.Profile)
	require.False(t, before.Profile.EmailVerified)

	provider.MarkVerified("u@example.com")
	verified, err := r.CheckVerification(ctx)
	require.NoError(t, err)
	require.True(t, verified)

	// A snapshot keeps the state it captured; the check replaces the
	// profile rather than writing through the shared pointer.
	assert.False(t, before.Profile.EmailVerified)
	assert.True(t, r.CurrentSnapshot().Profile.EmailVerified)
}

func TestCheckVerificationWithoutSession(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)
	_, err := r.CheckVerification(context.Background())
	assert.ErrorIs(t, err, account.ErrNotSignedIn)
}

func TestVerificationWatchObservesChange(t *testing.T) {
	r, provider, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))
	provider.MarkVerified("u@example.com")

	r.StartVerificationWatch(10 * time.Millisecond)

	assert.Eventually(t, r.IsAuthenticated, time.Second, 5*time.Millisecond)
	r.StopVerificationWatch()
}

func TestStartVerificationWatchIsIdempotent(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))

	// Re-invoking must cancel and replace, not stack timers.
	r.StartVerificationWatch(10 * time.Millisecond)
	r.StartVerificationWatch(10 * time.Millisecond)
	r.StartVerificationWatch(10 * time.Millisecond)
	r.StopVerificationWatch()
	r.StopVerificationWatch()
}

func TestFocusTriggerChecksOnlyWhileUnverified(t *testing.T) {
	r, provider, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))

	r.NotifyFocus(ctx)
	assert.False(t, r.IsAuthenticated())

	provider.MarkVerified("u@example.com")
	r.NotifyFocus(ctx)
	assert.True(t, r.IsAuthenticated())

	// Verified now; further triggers are no-ops.
	r.NotifyVisible(ctx)
	assert.True(t, r.IsAuthenticated())
}

func TestSignOutClearsState(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))
	require.NoError(t, r.SignOut(ctx))

	snap := r.CurrentSnapshot()
	assert.Nil(t, snap.Session)
	assert.Nil(t, snap.Profile)
	assert.False(t, r.IsAuthenticated())
}

func TestUpdateProfileReservesChangedName(t *testing.T) {
	r, _, repo, _ := newTestReconciler(t)
	ctx := context.Background()

	seedAccount(t, repo, "other", "Taken", true)
	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "Mine"))

	name := "Taken"
	updated, err := r.UpdateProfile(ctx, account.ProfilePatch{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Taken2", updated.DisplayName)
}

func TestUpdateProfileSkipsCheckForUnchangedName(t *testing.T) {
	r, _, _, store := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "Mine"))

	// Any uniqueness scan from here on would fail; an unchanged name
	// must not trigger one.
	store.FailQuery = func(string, docstore.Query) error {
		return errors.New("index offline")
	}

	name := "Mine"
	bio := "hello"
	updated, err := r.UpdateProfile(ctx, account.ProfilePatch{DisplayName: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Mine", updated.DisplayName)
	assert.Equal(t, "hello", updated.Bio)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	r, _, _, _ := newTestReconciler(t)
	ctx := context.Background()

	var last Snapshot
	unsubscribe := r.Subscribe(func(s Snapshot) { last = s })
	defer unsubscribe()

	require.NoError(t, r.SignUpWithEmail(ctx, "u@example.com", "secret1", "U"))
	require.NotNil(t, last.Session)
	assert.True(t, last.VerificationRequired)
}
