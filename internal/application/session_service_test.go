package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/pkg/helpers"
)

func newSessionFixture(t *testing.T, store SessionStore) (*SessionService, *entity.User) {
	t.Helper()
	users := newMemUsers()
	u := &entity.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, users.Create(context.Background(), u))
	jwt := helpers.NewJWTManager("access", "refresh", 15*time.Minute, 24*time.Hour)
	return NewSessionService(jwt, store, users, nullLogger()), u
}

func TestSessionService_IssueAndAuthenticate(t *testing.T) {
	store := newMemSessions()
	svc, u := newSessionFixture(t, store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, u)
	require.NoError(t, err)

	id, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.ID)
	assert.Equal(t, u.UserID, id.UserID)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.NotEmpty(t, id.SessionID)

	_, err = svc.Authenticate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)

	require.NoError(t, svc.Revoke(ctx, id))
	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
}

func TestSessionService_RefreshRotates(t *testing.T) {
	store := newMemSessions()
	svc, u := newSessionFixture(t, store)
	ctx := context.Background()

	first, err := svc.Issue(ctx, u)
	require.NoError(t, err)
	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, store.count())

	_, err = svc.Authenticate(ctx, first.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrAuthentication, "old session is retired")
	_, err = svc.Authenticate(ctx, second.AccessToken)
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrAuthentication, "a rotated refresh token cannot be replayed")

	_, err = svc.Refresh(ctx, second.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
}

func TestSessionService_RevokeAll(t *testing.T) {
	store := newMemSessions()
	svc, u := newSessionFixture(t, store)
	ctx := context.Background()

	a, err := svc.Issue(ctx, u)
	require.NoError(t, err)
	b, err := svc.Issue(ctx, u)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(ctx, u.UserID))
	for _, p := range []TokenPair{a, b} {
		_, err := svc.Authenticate(ctx, p.AccessToken)
		assert.ErrorIs(t, err, apperror.ErrAuthentication)
	}
}

func TestSessionService_StatelessWithoutStore(t *testing.T) {
	svc, u := newSessionFixture(t, nil)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, u)
	require.NoError(t, err)
	id, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, id))
	require.NoError(t, svc.RevokeAll(ctx, u.UserID))
	_, err = svc.Authenticate(ctx, pair.AccessToken)
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestSessionService_RefreshRejectsInactiveUser(t *testing.T) {
	store := newMemSessions()
	svc, u := newSessionFixture(t, store)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, u)
	require.NoError(t, err)
	u.IsActive = false
	require.NoError(t, svc.users.Update(ctx, u, entity.FieldIsActive))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
}
