package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/config"
	"github.com/oksasatya/rockae-api/pkg/helpers"
	"github.com/oksasatya/rockae-api/pkg/mailer"
)

const prefetch = 16

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	sender := deliverySender(cfg, logger)

	q, err := helpers.NewRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer q.Close()

	msgs, err := q.Consume("", prefetch)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			handle(ctx, sender, d, logger)
		}
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-ctx.Done()
	logger.Info("shutting down...")
	q.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("in-flight deliveries did not finish in time")
		os.Exit(1)
	}
}

// deliverySender is the real backend; the queue driver only makes sense on
// the publishing side, so the worker falls back to the HTTP API.
func deliverySender(cfg *config.Config, logger *logrus.Logger) mailer.Sender {
	if cfg.MailDriver == "mailgun" {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			log.Fatal("Mailgun not configured")
		}
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	}
	if cfg.MailAPIURL == "" || cfg.MailAPIKey == "" {
		log.Fatal("mail API not configured")
	}
	return mailer.NewAPISender(mailer.APIConfig{
		URL:             cfg.MailAPIURL,
		APIKey:          cfg.MailAPIKey,
		Timeout:         cfg.MailTimeout,
		RetryMaxElapsed: cfg.MailRetryMaxElapsed,
	}, logger)
}

// handle acks delivered jobs, drops malformed ones and requeues the rest once.
func handle(ctx context.Context, sender mailer.Sender, d amqp.Delivery, logger *logrus.Logger) {
	var job mailer.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.WithError(err).Warn("bad message")
		_ = d.Nack(false, false)
		return
	}
	entry := logger.WithField("to", mailer.Message{To: job.To}.Addresses())

	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := sender.Send(c, job.Message()); err != nil {
		entry.WithError(err).Error("send failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
	entry.Info("email delivered")
}
