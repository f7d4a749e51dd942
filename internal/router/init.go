package router

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/config"
	"github.com/oksasatya/rockae-api/internal/application"
	"github.com/oksasatya/rockae-api/internal/container"
	"github.com/oksasatya/rockae-api/internal/domain/repository"
	"github.com/oksasatya/rockae-api/internal/infrastructure/postgres"
	"github.com/oksasatya/rockae-api/internal/infrastructure/redisstore"
	"github.com/oksasatya/rockae-api/internal/infrastructure/search"
	"github.com/oksasatya/rockae-api/internal/infrastructure/storage"
	handlers "github.com/oksasatya/rockae-api/internal/interface/http"
	"github.com/oksasatya/rockae-api/internal/router/modules"
	"github.com/oksasatya/rockae-api/pkg/helpers"
	"github.com/oksasatya/rockae-api/pkg/mailer"
	"github.com/oksasatya/rockae-api/pkg/mailer/templates"
)

// Deps is everything the modules need. Sessions, Index, Avatars and Redis
// are optional and must be left as untyped nil when absent.
type Deps struct {
	Config   *config.Config
	Logger   logrus.FieldLogger
	Redis    *redis.Client
	JWT      *helpers.JWTManager
	Users    repository.UserRepository
	Profiles repository.ProfileRepository
	Quizzes  repository.QuizRepository
	Sessions application.SessionStore
	Mail     mailer.Sender
	Index    application.QuizIndex
	Avatars  application.AvatarUploader
	Probes   map[string]modules.Pinger
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

// BuildDeps assembles Deps from the clients main put in the container.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	d := Deps{
		Config:   cfg,
		Logger:   logger,
		JWT:      container.GetJWT(),
		Users:    postgres.NewUserRepository(pool),
		Profiles: postgres.NewProfileRepository(pool),
		Quizzes:  postgres.NewQuizRepository(pool),
		Mail:     container.GetMailSender(),
		Probes:   map[string]modules.Pinger{"postgres": pool},
	}
	if rdb := container.GetRedis(); rdb != nil {
		d.Redis = rdb
		d.Sessions = redisstore.NewSessionStore(rdb)
		d.Probes["redis"] = redisPinger{rdb: rdb}
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewQuizIndex(es, cfg.ESQuizIndex, logger)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Avatars = storage.NewAvatarStore(gcs, cfg.GCSBucket)
	}
	return d
}

// InitModules builds the services and handlers over d and registers every
// module. It runs once at startup.
func InitModules(r *Registry, d Deps) {
	cfg := d.Config

	tokens := application.NewTokenIssuer(cfg.VerifyTokenTTL, cfg.ResetTokenTTL)
	sessions := application.NewSessionService(d.JWT, d.Sessions, d.Users, d.Logger)
	composer := templates.NewComposer(templates.Brand{
		Name:       cfg.CompanyName,
		Link:       cfg.PortalWebAppURL,
		Logo:       cfg.LogoURL,
		SupportURL: cfg.SupportURL,
	})
	accounts := application.NewAccountService(d.Users, tokens, sessions, d.Mail, composer, cfg, d.Logger)
	profiles := application.NewProfileService(d.Users, d.Profiles, d.Avatars, d.Logger)
	quizzes := application.NewQuizService(d.Users, d.Quizzes, d.Index, d.Logger)

	cookies := helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure)

	r.Add(
		modules.NewHealthModule(d.Probes),
		modules.NewAccountsModule(handlers.NewAuthHandler(accounts, sessions, cookies, d.Logger), sessions, d.Redis),
		modules.NewProfileModule(handlers.NewProfileHandler(profiles, d.Logger), sessions, d.Redis),
		modules.NewQuizModule(handlers.NewQuizHandler(quizzes, d.Logger), sessions, d.Redis),
	)
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Redis))
	}
}
