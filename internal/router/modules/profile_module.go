package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/rockae-api/internal/interface/http"
	"github.com/oksasatya/rockae-api/internal/interface/middleware"
)

// ProfileModule mounts /user/profile; every route needs a session.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	Auth    middleware.Authenticator
	Redis   *redis.Client
}

func NewProfileModule(h *handlers.ProfileHandler, auth middleware.Authenticator, rdb *redis.Client) *ProfileModule {
	return &ProfileModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/user/profile")
	g.Use(
		middleware.Auth(m.Auth),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	g.GET("", m.Handler.GetProfile)
	g.PUT("", m.Handler.UpdateProfile)
	g.POST("/avatar",
		middleware.RateLimit(m.Redis, 10, time.Hour, middleware.KeyByUserID(), nil),
		m.Handler.UploadAvatar)
}
