package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() Message {
	return Message{
		Subject: "Verify your account",
		Body:    "hello",
		To:      []Recipient{{Name: "alice", Email: "alice@example.com"}},
	}
}

func newTestSender(url string) *APISender {
	logger, _ := test.NewNullLogger()
	return NewAPISender(APIConfig{
		URL:             url,
		APIKey:          "secret",
		Timeout:         2 * time.Second,
		RetryMaxElapsed: 3 * time.Second,
		MaxFailures:     2,
	}, logger)
}

func TestAPISender_PostsJSONWithBearer(t *testing.T) {
	var got apiPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, newTestSender(srv.URL).Send(context.Background(), testMessage()))
	assert.Equal(t, "Verify your account", got.Subject)
	assert.Equal(t, "hello", got.Body)
	assert.Equal(t, []Recipient{{Name: "alice", Email: "alice@example.com"}}, got.To)
}

func TestAPISender_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestSender(srv.URL).Send(context.Background(), testMessage())
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAPISender_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestSender(srv.URL).Send(context.Background(), testMessage()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAPISender_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := newTestSender(srv.URL)
	ctx := context.Background()
	require.Error(t, s.Send(ctx, testMessage()))
	require.Error(t, s.Send(ctx, testMessage()))

	err := s.Send(ctx, testMessage())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAPISender_RejectsEmptyRecipients(t *testing.T) {
	s := newTestSender("http://127.0.0.1:0")
	err := s.Send(context.Background(), Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

type recordingPublisher struct {
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.jobs = append(p.jobs, body)
	return p.err
}

func TestQueueSender(t *testing.T) {
	pub := &recordingPublisher{}
	require.NoError(t, NewQueueSender(pub).Send(context.Background(), testMessage()))
	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0].(EmailJob)
	assert.Equal(t, "hello", job.Text)
	assert.Equal(t, testMessage(), job.Message())

	pub.err = errors.New("channel closed")
	assert.ErrorContains(t, NewQueueSender(pub).Send(context.Background(), testMessage()), "enqueue mail")
}

func TestLogSender(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	require.NoError(t, NewLogSender(logger).Send(context.Background(), testMessage()))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Verify your account", hook.LastEntry().Data["subject"])
}
