package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// APIConfig configures the HTTP email API client.
type APIConfig struct {
	URL             string
	APIKey          string
	Timeout         time.Duration
	RetryMaxElapsed time.Duration
	MaxFailures     uint32
	OpenTimeout     time.Duration
}

// StatusError is returned for a non-2xx answer from the email API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mail api responded %d: %s", e.StatusCode, e.Body)
}

// APISender posts messages as JSON to an HTTP email API. Network errors and
// 5xx answers are retried with exponential backoff; repeated failures open a
// circuit breaker so callers fail fast while the provider is down.
type APISender struct {
	conf   APIConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	logger logrus.FieldLogger
}

type apiPayload struct {
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
	HTML    string      `json:"html,omitempty"`
	To      []Recipient `json:"to"`
}

func NewAPISender(conf APIConfig, logger logrus.FieldLogger) *APISender {
	if conf.Timeout <= 0 {
		conf.Timeout = 10 * time.Second
	}
	if conf.MaxFailures == 0 {
		conf.MaxFailures = 5
	}
	if conf.OpenTimeout <= 0 {
		conf.OpenTimeout = 30 * time.Second
	}
	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	st := gobreaker.Settings{
		Name:        "mail-api",
		MaxRequests: 1,
		Timeout:     conf.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= conf.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state")
		},
	}
	return &APISender{
		conf:   conf,
		client: &http.Client{Transport: tr, Timeout: conf.Timeout},
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

func (s *APISender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	body, err := json.Marshal(apiPayload{Subject: msg.Subject, Body: msg.Body, HTML: msg.HTML, To: msg.To})
	if err != nil {
		return err
	}
	_, err = s.cb.Execute(func() (interface{}, error) {
		return nil, s.postWithRetry(ctx, body)
	})
	if err != nil {
		return fmt.Errorf("send mail %q: %w", msg.Subject, err)
	}
	s.logger.WithFields(logrus.Fields{"subject": msg.Subject, "recipients": len(msg.To)}).Debug("mail sent")
	return nil
}

func (s *APISender) postWithRetry(ctx context.Context, body []byte) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.conf.URL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.conf.APIKey)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
		if resp.StatusCode >= 500 {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.conf.RetryMaxElapsed
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}
