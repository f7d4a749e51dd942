package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/rockae-api/config"
	"github.com/oksasatya/rockae-api/internal/container"
	pginfra "github.com/oksasatya/rockae-api/internal/infrastructure/postgres"
	"github.com/oksasatya/rockae-api/internal/infrastructure/search"
	"github.com/oksasatya/rockae-api/internal/infrastructure/storage"
	"github.com/oksasatya/rockae-api/internal/router"
	"github.com/oksasatya/rockae-api/pkg/helpers"
	"github.com/oksasatya/rockae-api/pkg/mailer"
	"github.com/oksasatya/rockae-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis is optional: without it sessions are stateless and rate limits are per process.
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, continuing without sessions store")
	} else {
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := search.NewClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, quiz search uses postgres")
		} else {
			container.SetES(es)
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcs.Close() }()
		container.SetGCS(gcs)
	}

	sender, closeSender, err := newMailSender(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init mail sender: %v", err)
	}
	defer closeSender()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetMailSender(sender)

	r := router.NewEngine(cfg, logger)
	reg := router.NewRegistry(r)
	router.InitModules(reg, router.BuildDeps())
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// newMailSender picks the delivery backend. With sending disabled every
// message is only logged.
func newMailSender(cfg *config.Config, logger *logrus.Logger) (mailer.Sender, func(), error) {
	noop := func() {}
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; emails are logged, not sent")
		return mailer.NewLogSender(logger), noop, nil
	}
	switch cfg.MailDriver {
	case "api":
		return mailer.NewAPISender(mailer.APIConfig{
			URL:             cfg.MailAPIURL,
			APIKey:          cfg.MailAPIKey,
			Timeout:         cfg.MailTimeout,
			RetryMaxElapsed: cfg.MailRetryMaxElapsed,
		}, logger), noop, nil
	case "mailgun":
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), noop, nil
	case "queue":
		q, err := helpers.NewRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, noop, fmt.Errorf("rabbitmq: %w", err)
		}
		return mailer.NewQueueSender(q), q.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
