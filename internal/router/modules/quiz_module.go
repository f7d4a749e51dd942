package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/rockae-api/internal/interface/http"
	"github.com/oksasatya/rockae-api/internal/interface/middleware"
)

// QuizModule mounts /quiz. Reading a quiz and submitting answers are open to
// candidates; managing quizzes needs a session.
type QuizModule struct {
	Handler *handlers.QuizHandler
	Auth    middleware.Authenticator
	Redis   *redis.Client
}

func NewQuizModule(h *handlers.QuizHandler, auth middleware.Authenticator, rdb *redis.Client) *QuizModule {
	return &QuizModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *QuizModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/quiz")

	candidate := g.Group("")
	candidate.Use(middleware.OptionalAuth(m.Auth))
	{
		candidate.GET("/:id", m.Handler.Get)
		candidate.POST("/:id/submit",
			middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil),
			m.Handler.Submit)
	}

	owner := g.Group("")
	owner.Use(
		middleware.Auth(m.Auth),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		owner.GET("", m.Handler.List)
		owner.POST("", m.Handler.Create)
		owner.GET("/search", m.Handler.Search)
		owner.DELETE("/:id", m.Handler.Delete)
		owner.POST("/:id/question", m.Handler.AddQuestion)
		owner.GET("/:id/results", m.Handler.Results)
	}
}
