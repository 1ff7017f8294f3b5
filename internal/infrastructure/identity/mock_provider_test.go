package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpIssuesVerifiableToken(t *testing.T) {
	p := NewMockProvider("secret")
	ctx := context.Background()

	session, err := p.SignUpWithEmail(ctx, "u@example.com", "secret1", "U")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.False(t, session.EmailVerified)
	assert.Equal(t, ProviderPassword, session.Provider)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, session.UserID, claims["user_id"])
	assert.Equal(t, "u@example.com", claims["email"])
	assert.Equal(t, false, claims["email_verified"])
}

func TestSignUpValidatesInput(t *testing.T) {
	p := NewMockProvider("secret")
	ctx := context.Background()

	_, err := p.SignUpWithEmail(ctx, "not-an-email", "secret1", "U")
	var idErr *Error
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, CodeInvalidEmail, idErr.Code)

	_, err = p.SignUpWithEmail(ctx, "u@example.com", "short", "U")
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, CodeWeakPassword, idErr.Code)

	_, err = p.SignUpWithEmail(ctx, "u@example.com", "secret1", "U")
	require.NoError(t, err)
	_, err = p.SignUpWithEmail(ctx, "u@example.com", "secret1", "U")
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, CodeEmailInUse, idErr.Code)
}

func TestSignInErrors(t *testing.T) {
	p := NewMockProvider("secret")
	ctx := context.Background()

	_, err := p.SignUpWithEmail(ctx, "u@example.com", "secret1", "U")
	require.NoError(t, err)

	var idErr *Error
	_, err = p.SignInWithEmail(ctx, "missing@example.com", "secret1")
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, CodeUserNotFound, idErr.Code)

	_, err = p.SignInWithEmail(ctx, "u@example.com", "wrong")
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, CodeWrongPassword, idErr.Code)

	p.Disable("u@example.com")
	_, err = p.SignInWithEmail(ctx, "u@example.com", "secret1")
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, CodeUserDisabled, idErr.Code)
}

func TestSessionChangeListenerFiresImmediately(t *testing.T) {
	p := NewMockProvider("secret")
	ctx := context.Background()

	var calls []*Session
	unsubscribe := p.OnSessionChange(func(s *Session) { calls = append(calls, s) })
	defer unsubscribe()

	// The current (signed-out) state is delivered on subscription.
	require.Len(t, calls, 1)
	assert.Nil(t, calls[0])

	_, err := p.SignUpWithEmail(ctx, "u@example.com", "secret1", "U")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	require.NotNil(t, calls[1])

	require.NoError(t, p.SignOut(ctx))
	require.Len(t, calls, 3)
	assert.Nil(t, calls[2])
}

func TestReloadObservesVerificationFlip(t *testing.T) {
	p := NewMockProvider("secret")
	ctx := context.Background()

	session, err := p.SignUpWithEmail(ctx, "u@example.com", "secret1", "U")
	require.NoError(t, err)
	require.False(t, session.EmailVerified)

	p.MarkVerified("u@example.com")

	fresh, err := p.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, fresh.EmailVerified)
	assert.Equal(t, session.UserID, fresh.UserID)
}

func TestSocialSignInIsPreVerified(t *testing.T) {
	p := NewMockProvider("secret")
	p.SocialProfile.Email = "g@example.com"
	p.SocialProfile.DisplayName = "Gee"

	session, err := p.SignInWithSocial(context.Background(), ProviderGoogle)
	require.NoError(t, err)
	assert.True(t, session.EmailVerified)
	assert.True(t, session.IsSocial())
	assert.Equal(t, "Gee", session.DisplayName)

	var idErr *Error
	_, err = p.SignInWithSocial(context.Background(), "myspace.com")
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, CodeOperationNotAllow, idErr.Code)
}

func TestDeleteAccountRemovesIdentity(t *testing.T) {
	p := NewMockProvider("secret")
	ctx := context.Background()

	_, err := p.SignUpWithEmail(ctx, "u@example.com", "secret1", "U")
	require.NoError(t, err)
	require.NoError(t, p.DeleteAccount(ctx))

	assert.Nil(t, p.Current())
	var idErr *Error
	_, err = p.SignInWithEmail(ctx, "u@example.com", "secret1")
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, CodeUserNotFound, idErr.Code)
}
