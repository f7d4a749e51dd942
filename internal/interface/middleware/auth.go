package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/rockae-api/internal/application"
	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/pkg/helpers"
)

const msgNoCredentials = "Authentication credentials were not provided."

// Authenticator resolves an access token to a caller.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (application.Identity, error)
}

// accessToken reads "Authorization: Bearer <jwt>" first, then the access cookie.
func accessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, err := c.Cookie(helpers.AccessCookie)
	if err != nil {
		return ""
	}
	return token
}

// Auth rejects requests without a valid access token and a live session.
// On success the caller's Identity is stored in the Gin context.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			_ = c.Error(apperror.Authentication(msgNoCredentials))
			c.Abort()
			return
		}
		id, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// OptionalAuth attaches an Identity when valid credentials are present and
// lets anonymous requests through. Bad credentials are treated as absent.
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := accessToken(c); token != "" {
			if id, err := a.Authenticate(c.Request.Context(), token); err == nil {
				setIdentity(c, id)
			}
		}
		c.Next()
	}
}
