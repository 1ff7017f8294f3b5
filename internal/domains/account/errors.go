package account

import (
	"errors"
	"fmt"

	"blog-backend/internal/infrastructure/identity"
)

// Repository-level errors
var (
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateDisplayName rejects a write whose display name is
	// already held by a different verified account. Recoverable:
	// callers retry through the registry's suffixing.
	ErrDuplicateDisplayName = errors.New("display name already taken")
)

// Service-level errors
var (
	// ErrVerificationRequired blocks session elevation for
	// email/password accounts until the address is confirmed.
	ErrVerificationRequired = errors.New("email address not verified")

	ErrNotSignedIn = errors.New("not signed in")

	// ErrBackendUnavailable marks a backend failure with no documented
	// fallback left.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ProviderError is an identity-provider failure carrying the
// user-facing message for its code and the original error as cause.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string { return e.Message }
func (e *ProviderError) Unwrap() error { return e.Err }

// providerMessages is the fixed code→message table. Unknown codes get
// the generic message annotated with the raw code for diagnostics.
var providerMessages = map[string]string{
	identity.CodeUserNotFound:     "No account was found for this email address",
	identity.CodeWrongPassword:    "The password is incorrect",
	identity.CodeEmailInUse:       "This email address is already in use",
	identity.CodeWeakPassword:     "The password must be at least 6 characters",
	identity.CodeInvalidEmail:     "The email address is not valid",
	identity.CodeUserDisabled:     "This account has been disabled",
	identity.CodeTooManyRequests:  "Too many attempts, please try again later",
	identity.CodePopupClosed:      "Sign-in was cancelled",
	identity.CodePopupBlocked:     "The sign-in popup was blocked, please allow popups",
	identity.CodeCancelledPopup:   "Sign-in was cancelled",
	identity.CodeNetworkFailed:    "A network error occurred, please check your connection",
	identity.CodeInternal:         "An internal error occurred, please try again later",
	identity.CodeUnauthorizedHost: "This domain is not authorized for sign-in",
}

// WrapProviderError converts an identity.Error into a *ProviderError.
// Other errors pass through unchanged.
func WrapProviderError(err error) error {
	if err == nil {
		return nil
	}
	var idErr *identity.Error
	if !errors.As(err, &idErr) {
		return err
	}
	msg, ok := providerMessages[idErr.Code]
	if !ok {
		msg = fmt.Sprintf("Something went wrong, please try again (%s)", idErr.Code)
	}
	return &ProviderError{Code: idErr.Code, Message: msg, Err: err}
}
