package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"blog-backend/internal/domains/account"
	"blog-backend/internal/infrastructure/identity"
)

// DefaultVerifyInterval is the periodic verification-check cadence.
const DefaultVerifyInterval = 10 * time.Second

// Snapshot is a point-in-time view of the reconciled session state,
// handed to subscribers on every change.
type Snapshot struct {
	Session              *identity.Session
	Profile              *account.Account
	Authenticated        bool
	VerificationRequired bool
}

// Reconciler keeps the identity provider's session and the stored
// profile record mutually consistent. The provider is the source of
// truth for the email-verification flag; the profile record is a
// cache of it that gets corrected silently whenever they disagree.
type Reconciler struct {
	provider identity.Provider
	repo     account.Repository
	registry *Registry

	mu          sync.Mutex
	session     *identity.Session
	profile     *account.Account
	subs        map[int]func(Snapshot)
	nextSub     int
	unsubscribe func()
	watchCancel context.CancelFunc

	initOnce sync.Once
	initDone chan struct{}

	verifyInterval time.Duration
}

func NewReconciler(provider identity.Provider, repo account.Repository, registry *Registry) *Reconciler {
	return &Reconciler{
		provider:       provider,
		repo:           repo,
		registry:       registry,
		subs:           make(map[int]func(Snapshot)),
		initDone:       make(chan struct{}),
		verifyInterval: DefaultVerifyInterval,
	}
}

// Init subscribes to the provider's session-change notifications and
// blocks until the first one fires, signed-out included. Later
// notifications keep updating state but never re-resolve
// initialization.
func (r *Reconciler) Init(ctx context.Context) error {
	r.mu.Lock()
	if r.unsubscribe != nil {
		r.mu.Unlock()
		<-r.initDone
		return nil
	}
	r.mu.Unlock()

	unsubscribe := r.provider.OnSessionChange(r.handleSessionChange)

	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()

	select {
	case <-r.initDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleSessionChange is the provider callback: merge the profile in,
// reconcile the verification flag, resolve init exactly once.
func (r *Reconciler) handleSessionChange(session *identity.Session) {
	ctx := context.Background()

	if session == nil {
		r.mu.Lock()
		r.session = nil
		r.profile = nil
		r.mu.Unlock()
	} else {
		profile := r.loadOrSynthesizeProfile(ctx, session)

		if profile.EmailVerified != session.EmailVerified {
			// The provider wins; correct the cached flag silently.
			if err := r.repo.SetEmailVerified(ctx, session.UserID, session.EmailVerified); err != nil {
				log.Warn().Err(err).Str("uid", session.UserID).
					Msg("failed to sync verification flag to profile store")
			}
			profile.EmailVerified = session.EmailVerified
		}

		r.mu.Lock()
		r.session = session
		r.profile = profile
		r.mu.Unlock()
	}

	r.initOnce.Do(func() { close(r.initDone) })
	r.notify()
}

// loadOrSynthesizeProfile fetches the stored profile, falling back to
// a minimal one built from session fields when the load fails. A
// profile load failure must never fail the sign-in.
func (r *Reconciler) loadOrSynthesizeProfile(ctx context.Context, session *identity.Session) *account.Account {
	profile, err := r.repo.Get(ctx, session.UserID)
	if err == nil {
		return profile
	}
	if !errors.Is(err, account.ErrAccountNotFound) {
		log.Warn().Err(err).Str("uid", session.UserID).Msg("profile load failed, synthesizing from session")
	}
	return &account.Account{
		ID:            session.UserID,
		Email:         session.Email,
		DisplayName:   session.DisplayName,
		PhotoURL:      session.PhotoURL,
		EmailVerified: session.EmailVerified,
	}
}

// SignUpWithEmail creates the identity account, reserves a unique
// display name, writes the profile record and sends the verification
// mail. A failed profile write triggers a best-effort compensating
// delete of the just-created identity account.
func (r *Reconciler) SignUpWithEmail(ctx context.Context, email, password, displayName string) error {
	session, err := r.provider.SignUpWithEmail(ctx, email, password, displayName)
	if err != nil {
		return account.WrapProviderError(err)
	}

	name := displayName
	if name != "" {
		name = r.registry.Reserve(ctx, name, session.UserID)
	}

	acct := &account.Account{
		ID:            session.UserID,
		Email:         session.Email,
		DisplayName:   name,
		PhotoURL:      session.PhotoURL,
		EmailVerified: session.EmailVerified,
	}
	if err := r.createProfile(ctx, acct); err != nil {
		// Compensating action, not a transaction: it can itself fail.
		if delErr := r.provider.DeleteAccount(ctx); delErr != nil {
			log.Error().Err(delErr).Str("uid", session.UserID).
				Msg("rollback of identity account failed")
		}
		return err
	}

	if err := r.provider.SendVerificationEmail(ctx); err != nil {
		log.Warn().Err(err).Str("uid", session.UserID).Msg("verification email send failed")
	}

	r.adoptSession(ctx, session)
	return nil
}

// createProfile writes the record, retrying a duplicate name through
// the registry's suffixing and finally falling back to an empty
// display name rather than failing the registration.
func (r *Reconciler) createProfile(ctx context.Context, acct *account.Account) error {
	err := r.repo.Create(ctx, acct)
	if err == nil {
		return nil
	}

	if errors.Is(err, account.ErrDuplicateDisplayName) && acct.DisplayName != "" {
		retry := *acct
		retry.DisplayName = r.registry.Generate(ctx, acct.DisplayName, acct.ID)
		if err := r.repo.Create(ctx, &retry); err == nil {
			*acct = retry
			return nil
		}
		log.Warn().Str("uid", acct.ID).Msg("suffixed display name write failed, creating without name")
	}

	nameless := *acct
	nameless.DisplayName = ""
	if err2 := r.repo.Create(ctx, &nameless); err2 != nil {
		return err
	}
	*acct = nameless
	return nil
}

// SignInWithEmail establishes the session, then reports
// ErrVerificationRequired for an unconfirmed email/password account.
// The session is kept either way; it just is not elevated.
func (r *Reconciler) SignInWithEmail(ctx context.Context, email, password string) error {
	session, err := r.provider.SignInWithEmail(ctx, email, password)
	if err != nil {
		return account.WrapProviderError(err)
	}

	r.adoptSession(ctx, session)

	if !session.IsSocial() && !session.EmailVerified {
		return account.ErrVerificationRequired
	}
	return nil
}

func (r *Reconciler) SignInWithGoogle(ctx context.Context) error {
	return r.signInSocial(ctx, identity.ProviderGoogle)
}

func (r *Reconciler) SignInWithGithub(ctx context.Context) error {
	return r.signInSocial(ctx, identity.ProviderGithub)
}

func (r *Reconciler) signInSocial(ctx context.Context, provider string) error {
	session, err := r.provider.SignInWithSocial(ctx, provider)
	if err != nil {
		return account.WrapProviderError(err)
	}

	r.ensureProfileDocument(ctx, session)
	r.adoptSession(ctx, session)
	return nil
}

// ensureProfileDocument creates the profile record on first social
// sign-in. Every failure here degrades instead of failing the
// sign-in: duplicate name → suffixed retry → nameless record.
func (r *Reconciler) ensureProfileDocument(ctx context.Context, session *identity.Session) {
	name := session.DisplayName
	if name != "" {
		name = r.registry.Reserve(ctx, name, session.UserID)
	}

	acct := &account.Account{
		ID:            session.UserID,
		Email:         session.Email,
		DisplayName:   name,
		PhotoURL:      session.PhotoURL,
		EmailVerified: session.EmailVerified,
	}
	if err := r.createProfile(ctx, acct); err != nil {
		log.Error().Err(err).Str("uid", session.UserID).Msg("profile document creation failed")
	}
}

// adoptSession sets the session optimistically and merges the profile
// best-effort, synthesizing one when the load fails.
func (r *Reconciler) adoptSession(ctx context.Context, session *identity.Session) {
	profile := r.loadOrSynthesizeProfile(ctx, session)

	r.mu.Lock()
	r.session = session
	r.profile = profile
	r.mu.Unlock()

	r.notify()
}

func (r *Reconciler) SignOut(ctx context.Context) error {
	if err := r.provider.SignOut(ctx); err != nil {
		return account.WrapProviderError(err)
	}

	r.mu.Lock()
	r.session = nil
	r.profile = nil
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	cancel := r.watchCancel
	r.watchCancel = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	r.notify()
	return nil
}

// UpdateProfile applies a profile edit for the current session,
// reserving a unique variant when the display name actually changes.
func (r *Reconciler) UpdateProfile(ctx context.Context, patch account.ProfilePatch) (*account.Account, error) {
	r.mu.Lock()
	session := r.session
	current := r.profile
	r.mu.Unlock()

	if session == nil {
		return nil, account.ErrNotSignedIn
	}

	if patch.DisplayName != nil && current != nil && *patch.DisplayName != current.DisplayName {
		reserved := r.registry.Reserve(ctx, *patch.DisplayName, session.UserID)
		patch.DisplayName = &reserved
	}

	updated, err := r.repo.Update(ctx, session.UserID, patch)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.profile = updated
	r.mu.Unlock()
	r.notify()
	return updated, nil
}

// CheckVerification forces the provider to refresh its view of the
// verification flag and reconciles every cache of it: the in-memory
// session, the in-memory profile and, when the value changed, the
// profile store (best-effort). Returns the freshly observed value.
// Safe to call concurrently; the last observed value wins.
func (r *Reconciler) CheckVerification(ctx context.Context) (bool, error) {
	if r.provider.Current() == nil {
		return false, account.ErrNotSignedIn
	}

	if _, err := r.provider.Reload(ctx); err != nil {
		return false, account.WrapProviderError(err)
	}
	if err := r.provider.ForceTokenRefresh(ctx); err != nil {
		log.Warn().Err(err).Msg("token refresh failed during verification check")
	}
	fresh, err := r.provider.Reload(ctx)
	if err != nil {
		return false, account.WrapProviderError(err)
	}

	r.mu.Lock()
	previous := false
	if r.session != nil {
		previous = r.session.EmailVerified
	}
	r.session = fresh
	changed := previous != fresh.EmailVerified
	if changed && r.profile != nil {
		// Replace rather than mutate: snapshots hand the profile
		// pointer to callers reading it outside the lock.
		refreshed := *r.profile
		refreshed.EmailVerified = fresh.EmailVerified
		r.profile = &refreshed
	}
	var cancel context.CancelFunc
	if fresh.EmailVerified {
		// A successful observation from any trigger stops the watch.
		cancel = r.watchCancel
		r.watchCancel = nil
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if changed {
		if err := r.repo.SetEmailVerified(ctx, fresh.UserID, fresh.EmailVerified); err != nil {
			log.Warn().Err(err).Str("uid", fresh.UserID).
				Msg("failed to persist verification flag")
		}
		r.notify()
	}

	return fresh.EmailVerified, nil
}

// StartVerificationWatch begins the periodic verification check.
// Re-invoking it cancels and replaces any previous watch, so timers
// never stack. The watch only runs while an unverified email/password
// session exists; it stops itself once verification is observed or
// the session goes away.
func (r *Reconciler) StartVerificationWatch(interval time.Duration) {
	if interval <= 0 {
		interval = r.verifyInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	if r.watchCancel != nil {
		r.watchCancel()
	}
	r.watchCancel = cancel
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !r.shouldCheck() {
					// Session gone or already verified; stop checking.
					cancel()
					return
				}
				verified, err := r.CheckVerification(ctx)
				if err != nil {
					log.Warn().Err(err).Msg("periodic verification check failed")
					continue
				}
				if verified {
					// CheckVerification cancelled the watch already.
					return
				}
			}
		}
	}()
}

// StopVerificationWatch cancels the periodic check if one is running.
func (r *Reconciler) StopVerificationWatch() {
	r.mu.Lock()
	cancel := r.watchCancel
	r.watchCancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// NotifyFocus runs a verification check on window-focus regain.
func (r *Reconciler) NotifyFocus(ctx context.Context) {
	r.checkOnTrigger(ctx, "focus")
}

// NotifyVisible runs a verification check on visibility regain.
func (r *Reconciler) NotifyVisible(ctx context.Context) {
	r.checkOnTrigger(ctx, "visibility")
}

func (r *Reconciler) checkOnTrigger(ctx context.Context, trigger string) {
	if !r.shouldCheck() {
		return
	}
	if _, err := r.CheckVerification(ctx); err != nil {
		log.Warn().Err(err).Str("trigger", trigger).Msg("verification check failed")
	}
}

// shouldCheck gates the watch triggers: a session must exist and be
// unverified.
func (r *Reconciler) shouldCheck() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil && !r.session.EmailVerified
}

// IsAuthenticated: a session exists and is either social (externally
// verified) or has a confirmed email.
func (r *Reconciler) IsAuthenticated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil && (r.session.IsSocial() || r.session.EmailVerified)
}

// VerificationRequired: an email/password session exists whose address
// is still unconfirmed.
func (r *Reconciler) VerificationRequired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil && !r.session.IsSocial() && !r.session.EmailVerified
}

// CurrentSnapshot returns the current state.
func (r *Reconciler) CurrentSnapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Reconciler) snapshotLocked() Snapshot {
	return Snapshot{
		Session:              r.session,
		Profile:              r.profile,
		Authenticated:        r.session != nil && (r.session.IsSocial() || r.session.EmailVerified),
		VerificationRequired: r.session != nil && !r.session.IsSocial() && !r.session.EmailVerified,
	}
}

// Subscribe registers a state-change observer. The returned function
// unsubscribes.
func (r *Reconciler) Subscribe(fn func(Snapshot)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Reconciler) notify() {
	r.mu.Lock()
	snapshot := r.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// SendVerificationEmail re-sends the confirmation mail for the
// current session.
func (r *Reconciler) SendVerificationEmail(ctx context.Context) error {
	if r.provider.Current() == nil {
		return account.ErrNotSignedIn
	}
	return account.WrapProviderError(r.provider.SendVerificationEmail(ctx))
}

// SendPasswordReset asks the provider to mail a reset link.
func (r *Reconciler) SendPasswordReset(ctx context.Context, email string) error {
	return account.WrapProviderError(r.provider.SendPasswordReset(ctx, email))
}
