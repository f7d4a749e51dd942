package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/pkg/response"
)

// ErrorMapper renders the last error a handler pushed with c.Error.
// Classified errors keep their message and details; everything else
// becomes a 500 with a fixed message and is logged.
func ErrorMapper(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.Error
		if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": RequestID(c),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
			}).Error("unhandled error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(apperror.InternalMessage, nil))
			return
		}
		if appErr.Kind == apperror.KindDependency {
			logger.WithError(err).WithField("request_id", RequestID(c)).Warn("dependency failure")
		}
		c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), response.Error(appErr.Message, appErr.Details))
	}
}

// Recovery turns a panic into the same 500 body ErrorMapper uses.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		logger.WithFields(logrus.Fields{
			"request_id": RequestID(c),
			"panic":      rec,
			"path":       c.Request.URL.Path,
		}).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(apperror.InternalMessage, nil))
	})
}
