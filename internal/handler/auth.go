package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mitea/boba-platform-api/internal/dto"
	"github.com/mitea/boba-platform-api/internal/middleware"
	"github.com/mitea/boba-platform-api/internal/service"
	"github.com/mitea/boba-platform-api/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
	cartService *service.CartService
	cookieName  string
	cookieTTL   int
}

func NewAuthHandler(authService *service.AuthService, cartService *service.CartService, cookieName string, cookieTTLSeconds int) *AuthHandler {
	return &AuthHandler{authService: authService, cartService: cartService, cookieName: cookieName, cookieTTL: cookieTTLSeconds}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			respondError(c, http.StatusConflict, "email is already registered")
		case isValidationError(err):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respondCreated(c, user)
}

// isValidationError distinguishes policy failures, which the form renders
// inline, from infrastructure failures, which become a generic toast.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		validation.ErrPasswordTooShort, validation.ErrPasswordNoUpper,
		validation.ErrPasswordNoLower, validation.ErrPasswordNoDigit,
		validation.ErrPasswordNoSpecial, validation.ErrPasswordWhitespace,
		validation.ErrPasswordTooCommon, validation.ErrPasswordContainsUser,
		validation.ErrReasonTooShort, validation.ErrInvalidPhone,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOTP):
			respondError(c, http.StatusBadRequest, "invalid or expired verification code")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "user not found")
		default:
			respondError(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondMessage(c, "email verified")
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondMessage(c, "verification code sent")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.respondLoginError(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	respondOK(c, resp)
}

func (h *AuthHandler) LoginWithGoogle(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrGoogleDisabled) {
			respondError(c, http.StatusServiceUnavailable, "google sign-in is not configured")
			return
		}
		h.respondLoginError(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token)
	respondOK(c, resp)
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrEmailNotVerified):
		respondError(c, http.StatusForbidden, "email not verified")
	case errors.Is(err, service.ErrAccountInactive):
		respondError(c, http.StatusForbidden, "account is inactive")
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, h.cookieTTL, "/", "", false, true)
}

// Me is the session probe. Authentication failures never reach here (the
// middleware rejects them); an unknown or inactive account resolves to an
// empty body rather than an error, matching the probe's never-throws
// contract.
func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := h.authService.CheckAuth(c.Request.Context(), middleware.GetUserID(c))
	if user == nil {
		respondOK(c, nil)
		return
	}
	respondOK(c, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	respondMessage(c, "logged out")
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	respondMessage(c, "if the email is registered, a reset link has been sent")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			respondError(c, http.StatusBadRequest, "invalid or expired reset token")
		case isValidationError(err):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondMessage(c, "password updated")
}

// MergeCart runs the login-time guest cart merge. It sits on the auth
// surface because the SPA calls it right after a successful login.
func (h *AuthHandler) MergeCart(c *gin.Context) {
	var req dto.MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.cartService.MergeGuestCart(c.Request.Context(), middleware.GetUserID(c), req.GuestToken)
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondOK(c, dto.ToCartResponse(cart))
}
