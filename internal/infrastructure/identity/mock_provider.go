package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MockProvider is an in-memory Provider for tests and local
// development. It keeps accounts in a map, issues HMAC-signed JWT
// session tokens and lets tests flip verification state the way a
// user clicking the emailed link would.
type MockProvider struct {
	mu        sync.Mutex
	secret    []byte
	accounts  map[string]*mockAccount // by email
	current   *Session
	listeners map[int]func(*Session)
	nextSub   int

	// SocialProfile seeds the session returned by SignInWithSocial.
	SocialProfile struct {
		Email       string
		DisplayName string
		PhotoURL    string
	}
}

type mockAccount struct {
	userID      string
	email       string
	password    string
	displayName string
	photoURL    string
	verified    bool
	provider    string
	disabled    bool
}

func NewMockProvider(secret string) *MockProvider {
	return &MockProvider{
		secret:    []byte(secret),
		accounts:  make(map[string]*mockAccount),
		listeners: make(map[int]func(*Session)),
	}
}

func (p *MockProvider) SignUpWithEmail(ctx context.Context, email, password, displayName string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !strings.Contains(email, "@") {
		return nil, newError(CodeInvalidEmail, errors.New("malformed email"))
	}
	if len(password) < 6 {
		return nil, newError(CodeWeakPassword, errors.New("password shorter than 6 characters"))
	}
	if _, ok := p.accounts[email]; ok {
		return nil, newError(CodeEmailInUse, errors.New("account exists"))
	}

	acct := &mockAccount{
		userID:      uuid.NewString(),
		email:       email,
		password:    password,
		displayName: displayName,
		provider:    ProviderPassword,
	}
	p.accounts[email] = acct
	return p.establishLocked(acct)
}

func (p *MockProvider) SignInWithEmail(ctx context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok {
		return nil, newError(CodeUserNotFound, errors.New("no account for email"))
	}
	if acct.disabled {
		return nil, newError(CodeUserDisabled, errors.New("account disabled"))
	}
	if acct.password != password {
		return nil, newError(CodeWrongPassword, errors.New("password mismatch"))
	}
	return p.establishLocked(acct)
}

func (p *MockProvider) SignInWithSocial(ctx context.Context, provider string) (*Session, error) {
	if provider != ProviderGoogle && provider != ProviderGithub {
		return nil, newError(CodeOperationNotAllow, errors.New("unknown provider "+provider))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	email := p.SocialProfile.Email
	if email == "" {
		email = "social@example.com"
	}
	acct, ok := p.accounts[email]
	if !ok {
		acct = &mockAccount{
			userID:      uuid.NewString(),
			email:       email,
			displayName: p.SocialProfile.DisplayName,
			photoURL:    p.SocialProfile.PhotoURL,
			verified:    true, // externally verified identity
			provider:    provider,
		}
		p.accounts[email] = acct
	}
	acct.provider = provider
	acct.verified = true
	return p.establishLocked(acct)
}

func (p *MockProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	listeners := p.snapshotListenersLocked()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
	return nil
}

func (p *MockProvider) OnSessionChange(fn func(*Session)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.listeners[id] = fn
	current := cloneSession(p.current)
	p.mu.Unlock()

	// Fire immediately with the current state, signed out included.
	fn(current)

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *MockProvider) Current() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneSession(p.current)
}

func (p *MockProvider) Reload(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, newError(CodeNoCurrentSession, errors.New("not signed in"))
	}
	acct, ok := p.accounts[p.current.Email]
	if !ok {
		return nil, newError(CodeUserNotFound, errors.New("account removed"))
	}
	p.current.EmailVerified = acct.verified
	p.current.DisplayName = acct.displayName
	p.current.PhotoURL = acct.photoURL
	return cloneSession(p.current), nil
}

func (p *MockProvider) ForceTokenRefresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return newError(CodeNoCurrentSession, errors.New("not signed in"))
	}
	token, err := p.signToken(p.current)
	if err != nil {
		return newError(CodeInternal, err)
	}
	p.current.Token = token
	return nil
}

func (p *MockProvider) SendVerificationEmail(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return newError(CodeNoCurrentSession, errors.New("not signed in"))
	}
	return nil
}

func (p *MockProvider) SendPasswordReset(ctx context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[email]; !ok {
		return newError(CodeUserNotFound, errors.New("no account for email"))
	}
	return nil
}

func (p *MockProvider) DeleteAccount(ctx context.Context) error {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return newError(CodeNoCurrentSession, errors.New("not signed in"))
	}
	delete(p.accounts, p.current.Email)
	p.current = nil
	listeners := p.snapshotListenersLocked()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
	return nil
}

// MarkVerified simulates the user completing email verification out of
// band. The change becomes visible on the next Reload.
func (p *MockProvider) MarkVerified(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct, ok := p.accounts[email]; ok {
		acct.verified = true
	}
}

// Disable marks an account disabled so the next sign-in fails.
func (p *MockProvider) Disable(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct, ok := p.accounts[email]; ok {
		acct.disabled = true
	}
}

func (p *MockProvider) establishLocked(acct *mockAccount) (*Session, error) {
	session := &Session{
		UserID:        acct.userID,
		Email:         acct.email,
		DisplayName:   acct.displayName,
		PhotoURL:      acct.photoURL,
		EmailVerified: acct.verified,
		Provider:      acct.provider,
	}
	token, err := p.signToken(session)
	if err != nil {
		return nil, newError(CodeInternal, err)
	}
	session.Token = token
	p.current = session
	listeners := p.snapshotListenersLocked()
	snapshot := cloneSession(session)

	// Notify outside the lock in spirit: listeners get a copy, and the
	// small mock keeps delivery synchronous in session order.
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(cloneSession(snapshot))
	}
	p.mu.Lock()

	return snapshot, nil
}

func (p *MockProvider) signToken(s *Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":        s.UserID,
		"email":          s.Email,
		"provider":       s.Provider,
		"email_verified": s.EmailVerified,
		"iat":            time.Now().Unix(),
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *MockProvider) snapshotListenersLocked() []func(*Session) {
	out := make([]func(*Session), 0, len(p.listeners))
	for _, fn := range p.listeners {
		out = append(out, fn)
	}
	return out
}

func cloneSession(s *Session) *Session {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}
