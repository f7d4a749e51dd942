package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/rockae-api/internal/application"
	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/interface/middleware"
	"github.com/oksasatya/rockae-api/pkg/validation"
)

// bindJSON binds the body into req and pushes a validation error on failure.
func bindJSON(c *gin.Context, req any, msg string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(apperror.Validation(msg, validation.ToDetails(err)))
		return false
	}
	return true
}

// identity returns the caller set by the auth guard. Routes using it are
// always mounted behind middleware.Auth.
func identity(c *gin.Context) (application.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = c.Error(apperror.Authentication("Authentication credentials were not provided."))
	}
	return id, ok
}

func paramID(c *gin.Context, name, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperror.NotFound(notFound))
		return 0, false
	}
	return id, true
}
