package identity

import (
	"context"
	"fmt"
)

// Social provider ids, as reported on the session.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
	ProviderGithub   = "github.com"
)

// Session is the provider-side view of a signed-in user.
type Session struct {
	UserID        string
	Email         string
	DisplayName   string
	PhotoURL      string
	EmailVerified bool
	Provider      string
	Token         string
}

// IsSocial reports whether the session came from an external identity
// (Google/GitHub), which the provider treats as pre-verified.
func (s *Session) IsSocial() bool {
	return s != nil && s.Provider != ProviderPassword && s.Provider != ""
}

// Provider is the identity facade. Credential verification, token
// issuance and verification email delivery all live behind it.
type Provider interface {
	SignInWithEmail(ctx context.Context, email, password string) (*Session, error)
	SignUpWithEmail(ctx context.Context, email, password, displayName string) (*Session, error)
	SignInWithSocial(ctx context.Context, provider string) (*Session, error)
	SignOut(ctx context.Context) error

	// OnSessionChange registers a callback fired with the current
	// session immediately and again on every sign-in, sign-out and
	// token refresh. The returned function unsubscribes.
	OnSessionChange(fn func(*Session)) (unsubscribe func())

	// Current returns the provider's in-memory session, or nil.
	Current() *Session

	// Reload re-fetches the current session's profile, picking up
	// verification-state changes made out of band.
	Reload(ctx context.Context) (*Session, error)

	// ForceTokenRefresh mints a fresh token for the current session.
	ForceTokenRefresh(ctx context.Context) error

	SendVerificationEmail(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error

	// DeleteAccount removes the current session's account. Used as the
	// compensating action when the profile write after sign-up fails.
	DeleteAccount(ctx context.Context) error
}

// Error is a provider failure carrying the provider's error code, so
// upper layers can map it to a user-facing message.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Codes returned by providers, matching the upstream auth SDK.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeUserDisabled      = "auth/user-disabled"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeNoCurrentSession  = "auth/no-current-user"
	CodePopupBlocked      = "auth/popup-blocked"
	CodePopupClosed       = "auth/popup-closed-by-user"
	CodeNetworkFailed     = "auth/network-request-failed"
	CodeInternal          = "auth/internal-error"
	CodeUnauthorizedHost  = "auth/unauthorized-domain"
	CodeCancelledPopup    = "auth/cancelled-popup-request"
	CodeOperationNotAllow = "auth/operation-not-allowed"
)

func newError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}
