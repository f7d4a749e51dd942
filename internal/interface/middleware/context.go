package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/rockae-api/internal/application"
)

// Gin context keys set by this package.
const (
	CtxIdentityKey  = "identity"
	CtxUserIDKey    = "userID"
	CtxRequestIDKey = "request_id"
	CtxRealIPKey    = "real_ip"
)

func setIdentity(c *gin.Context, id application.Identity) {
	c.Set(CtxIdentityKey, id)
	c.Set(CtxUserIDKey, id.UserID)
}

// IdentityFrom returns the caller put in the context by Auth or OptionalAuth.
func IdentityFrom(c *gin.Context) (application.Identity, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return application.Identity{}, false
	}
	id, ok := v.(application.Identity)
	return id, ok
}

// Caller is IdentityFrom as a pointer, nil for anonymous requests.
func Caller(c *gin.Context) *application.Identity {
	id, ok := IdentityFrom(c)
	if !ok {
		return nil
	}
	return &id
}

// RequestID returns the id assigned by RequestIDMiddleware.
func RequestID(c *gin.Context) string {
	return c.GetString(CtxRequestIDKey)
}
