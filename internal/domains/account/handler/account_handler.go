package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-backend/internal/domains/account"
	"blog-backend/internal/domains/account/service"
	"blog-backend/internal/shared/middleware"
	"blog-backend/internal/shared/response"
)

// AccountHandler exposes the session and profile endpoints.
type AccountHandler struct {
	reconciler *service.Reconciler
}

func NewAccountHandler(reconciler *service.Reconciler) *AccountHandler {
	return &AccountHandler{reconciler: reconciler}
}

func (h *AccountHandler) SignUp(c *gin.Context) {
	var req account.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	if err := h.reconciler.SignUpWithEmail(c.Request.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		h.writeAccountError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, h.sessionPayload())
}

func (h *AccountHandler) SignIn(c *gin.Context) {
	var req account.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	err := h.reconciler.SignInWithEmail(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, account.ErrVerificationRequired) {
		// The session is established; elevation is what is blocked.
		response.ErrorResponse(c, http.StatusForbidden, "VERIFICATION_REQUIRED",
			"Please verify your email address before signing in")
		return
	}
	if err != nil {
		h.writeAccountError(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.sessionPayload())
}

func (h *AccountHandler) SignInWithGoogle(c *gin.Context) {
	if err := h.reconciler.SignInWithGoogle(c.Request.Context()); err != nil {
		h.writeAccountError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.sessionPayload())
}

func (h *AccountHandler) SignInWithGithub(c *gin.Context) {
	if err := h.reconciler.SignInWithGithub(c.Request.Context()); err != nil {
		h.writeAccountError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.sessionPayload())
}

func (h *AccountHandler) SignOut(c *gin.Context) {
	if err := h.reconciler.SignOut(c.Request.Context()); err != nil {
		h.writeAccountError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"signedOut": true})
}

// CheckVerification re-reads the verification flag from the provider
// and reports the fresh value.
func (h *AccountHandler) CheckVerification(c *gin.Context) {
	verified, err := h.reconciler.CheckVerification(c.Request.Context())
	if err != nil {
		h.writeAccountError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"emailVerified": verified})
}

func (h *AccountHandler) SendVerificationEmail(c *gin.Context) {
	if err := h.reconciler.SendVerificationEmail(c.Request.Context()); err != nil {
		h.writeAccountError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func (h *AccountHandler) SendPasswordReset(c *gin.Context) {
	var req account.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	if err := h.reconciler.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.writeAccountError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	snap := h.reconciler.CurrentSnapshot()
	if snap.Profile == nil {
		response.Unauthorized(c, "not signed in")
		return
	}
	requested := c.GetString(middleware.CtxUserID)
	if requested != "" && requested != snap.Profile.ID {
		response.Forbidden(c, "profile belongs to another account")
		return
	}
	response.Success(c, http.StatusOK, snap.Profile.ToDTO())
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req account.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	updated, err := h.reconciler.UpdateProfile(c.Request.Context(), account.ProfilePatch{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Bio:         req.Bio,
	})
	if err != nil {
		h.writeAccountError(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated.ToDTO())
}

func (h *AccountHandler) sessionPayload() gin.H {
	snap := h.reconciler.CurrentSnapshot()
	payload := gin.H{
		"authenticated":        snap.Authenticated,
		"verificationRequired": snap.VerificationRequired,
	}
	if snap.Session != nil {
		payload["token"] = snap.Session.Token
	}
	if snap.Profile != nil {
		payload["profile"] = snap.Profile.ToDTO()
	}
	return payload
}

func (h *AccountHandler) writeAccountError(c *gin.Context, err error) {
	var provErr *account.ProviderError
	switch {
	case errors.Is(err, account.ErrDuplicateDisplayName):
		response.Conflict(c, "This display name is already taken")
	case errors.Is(err, account.ErrVerificationRequired):
		response.ErrorResponse(c, http.StatusForbidden, "VERIFICATION_REQUIRED",
			"Please verify your email address")
	case errors.Is(err, account.ErrNotSignedIn):
		response.Unauthorized(c, "not signed in")
	case errors.Is(err, account.ErrAccountNotFound):
		response.NotFound(c, "account not found")
	case errors.As(err, &provErr):
		response.ErrorResponse(c, http.StatusUnauthorized, provErr.Code, provErr.Message)
	default:
		response.InternalError(c, "something went wrong, please try again")
	}
}
