package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/application"
	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/pkg/helpers"
	"github.com/oksasatya/rockae-api/pkg/response"
)

// AuthHandler serves registration, login, token and the verification and
// password-reset endpoints under /accounts.
type AuthHandler struct {
	Accounts *application.AccountService
	Sessions *application.SessionService
	Cookies  *helpers.CookieManager
	Logger   logrus.FieldLogger
}

func NewAuthHandler(accounts *application.AccountService, sessions *application.SessionService, cookies *helpers.CookieManager, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Sessions: sessions, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type resetEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Register POST /api/accounts/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req, "Invalid registration data") {
		return
	}
	_, err := h.Accounts.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, response.Message("User created successfully"))
}

// Login POST /api/accounts/auth/login sets the session cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, "Invalid credentials") {
		return
	}
	_, pair, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	c.JSON(http.StatusOK, response.Message("Logged in successfully"))
}

// Token POST /api/accounts/auth/token returns the pair in the body for
// clients that do not use cookies.
func (h *AuthHandler) Token(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, "Invalid credentials") {
		return
	}
	_, pair, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tokenPairResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

// TokenRefresh POST /api/accounts/auth/token/refresh accepts the refresh
// token in the body or, failing that, the refresh cookie.
func (h *AuthHandler) TokenRefresh(c *gin.Context) {
	var req refreshRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "Invalid refresh request") {
		return
	}
	fromCookie := false
	if req.Refresh == "" {
		if v, err := c.Cookie(helpers.RefreshCookie); err == nil && v != "" {
			req.Refresh, fromCookie = v, true
		}
	}
	if req.Refresh == "" {
		_ = c.Error(apperror.Validation("Invalid refresh request", map[string]string{"refresh": "This field is required."}))
		return
	}

	pair, err := h.Sessions.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if fromCookie {
		h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	}
	c.JSON(http.StatusOK, tokenPairResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

// Logout POST /api/accounts/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Sessions.Revoke(c.Request.Context(), id); err != nil {
		h.Logger.WithError(err).WithField("user_id", id.UserID).Warn("revoke session failed")
	}
	h.Cookies.Clear(c)
	c.JSON(http.StatusOK, response.Message("Logged out successfully"))
}

// SendVerificationEmail POST /api/accounts/send-verification-email
func (h *AuthHandler) SendVerificationEmail(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Accounts.RequestVerificationEmail(c.Request.Context(), id.UserID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Verification email sent."))
}

// Verify POST /api/accounts/verify/:token
func (h *AuthHandler) Verify(c *gin.Context) {
	if err := h.Accounts.VerifyAccount(c.Request.Context(), c.Param("token")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Account verified successfully"))
}

// SendPasswordResetEmail POST /api/accounts/send-password-reset-email
// answers the same way whether or not the address is registered.
func (h *AuthHandler) SendPasswordResetEmail(c *gin.Context) {
	var req resetEmailRequest
	if !bindJSON(c, &req, "Invalid password reset request") {
		return
	}
	if err := h.Accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Password reset email sent"))
}

// ResetPassword POST /api/accounts/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req, "Invalid password reset data") {
		return
	}
	err := h.Accounts.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Password reset successful"))
}
