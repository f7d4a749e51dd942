package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/rockae-api/internal/interface/middleware"
)

// DebugModule exposes expvar at /debug/vars to private addresses only.
type DebugModule struct {
	Redis *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{Redis: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	private := middleware.AllowPrivateIP()
	rg.GET("/debug/vars",
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), nil),
		func(c *gin.Context) {
			if !private(c) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
			c.Next()
		},
		gin.WrapH(expvar.Handler()))
}
