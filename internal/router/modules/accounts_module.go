package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/rockae-api/internal/interface/http"
	"github.com/oksasatya/rockae-api/internal/interface/middleware"
)

// AccountsModule mounts /accounts.
// Public: register, login, token, token/refresh, verify/:token,
// send-password-reset-email, reset-password/:token.
// Protected: auth/logout, send-verification-email.
type AccountsModule struct {
	Handler *handlers.AuthHandler
	Auth    middleware.Authenticator
	Redis   *redis.Client
}

func NewAccountsModule(h *handlers.AuthHandler, auth middleware.Authenticator, rdb *redis.Client) *AccountsModule {
	return &AccountsModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *AccountsModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Hour, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)
	tokenLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetMailLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	acc := rg.Group("/accounts")
	acc.POST("/auth/register", registerLimiter, m.Handler.Register)
	acc.POST("/auth/login", loginLimiter, m.Handler.Login)
	acc.POST("/auth/token", loginLimiter, m.Handler.Token)
	acc.POST("/auth/token/refresh", refreshLimiter, m.Handler.TokenRefresh)
	acc.POST("/verify/:token", tokenLimiter, m.Handler.Verify)
	acc.POST("/send-password-reset-email", resetMailLimiter, m.Handler.SendPasswordResetEmail)
	acc.POST("/reset-password/:token", tokenLimiter, m.Handler.ResetPassword)

	auth := acc.Group("")
	auth.Use(middleware.Auth(m.Auth))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
		auth.POST("/send-verification-email",
			middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByUserID(), nil),
			m.Handler.SendVerificationEmail)
	}
}
