package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/internal/domain/repository"
	"github.com/oksasatya/rockae-api/pkg/helpers"
)

const msgSessionInvalid = "Given token not valid for any token type"

// Identity is the authenticated caller, passed explicitly into services.
type Identity struct {
	ID        int64
	UserID    string
	Email     string
	SessionID string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Session is the server-side record behind a token pair.
type Session struct {
	ID        string
	UserID    string
	StorageID int64
	Email     string
	CreatedAt time.Time
}

// SessionStore persists live sessions. Get returns nil, nil for an unknown sid.
type SessionStore interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, sid string) (*Session, error)
	Delete(ctx context.Context, s Session) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// SessionService issues and checks JWT pairs. With a nil store it is
// stateless and tokens stay valid until they expire.
type SessionService struct {
	jwt    *helpers.JWTManager
	store  SessionStore
	users  repository.UserRepository
	logger logrus.FieldLogger
}

func NewSessionService(jwt *helpers.JWTManager, store SessionStore, users repository.UserRepository, logger logrus.FieldLogger) *SessionService {
	return &SessionService{jwt: jwt, store: store, users: users, logger: logger}
}

func (s *SessionService) Issue(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	subj := helpers.Subject{ID: u.ID, UserID: u.UserID, Email: u.Email, SessionID: sid}

	access, aexp, err := s.jwt.GenerateAccessToken(subj)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.UserID).Error("generate access token failed")
		return TokenPair{}, apperror.Internal(err)
	}
	refresh, rexp, err := s.jwt.GenerateRefreshToken(subj)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.UserID).Error("generate refresh token failed")
		return TokenPair{}, apperror.Internal(err)
	}

	if s.store != nil {
		sess := Session{ID: sid, UserID: u.UserID, StorageID: u.ID, Email: u.Email, CreatedAt: time.Now().UTC()}
		if err := s.store.Save(ctx, sess, time.Until(rexp)); err != nil {
			s.logger.WithError(err).WithField("user_id", u.UserID).Error("save session failed")
			return TokenPair{}, apperror.Internal(err)
		}
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh exchanges a refresh token for a new pair and retires the old session.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, apperror.Authentication("Token is invalid or expired")
	}
	old, err := s.liveSession(ctx, claims)
	if err != nil {
		return TokenPair{}, err
	}
	id, err := claims.StorageID()
	if err != nil {
		return TokenPair{}, apperror.Authentication("Token is invalid or expired")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return TokenPair{}, apperror.Authentication("User not found")
		}
		return TokenPair{}, err
	}
	if !u.IsActive {
		return TokenPair{}, apperror.Authentication("User is inactive")
	}
	if s.store != nil && old != nil {
		if err := s.store.Delete(ctx, *old); err != nil {
			s.logger.WithError(err).WithField("sid", old.ID).Warn("delete rotated session failed")
		}
	}
	return s.Issue(ctx, u)
}

// Authenticate validates an access token and, when sessions are tracked,
// that its session is still live.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (Identity, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return Identity{}, apperror.Authentication(msgSessionInvalid)
	}
	if _, err := s.liveSession(ctx, claims); err != nil {
		return Identity{}, err
	}
	id, err := claims.StorageID()
	if err != nil {
		return Identity{}, apperror.Authentication(msgSessionInvalid)
	}
	return Identity{ID: id, UserID: claims.UserID, Email: claims.Email, SessionID: claims.SessionID}, nil
}

func (s *SessionService) liveSession(ctx context.Context, claims *helpers.Claims) (*Session, error) {
	if s.store == nil {
		return nil, nil
	}
	sess, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if sess == nil || sess.UserID != claims.UserID {
		return nil, apperror.Authentication(msgSessionInvalid)
	}
	return sess, nil
}

// Revoke ends the session behind id (logout).
func (s *SessionService) Revoke(ctx context.Context, id Identity) error {
	if s.store == nil || id.SessionID == "" {
		return nil
	}
	return s.store.Delete(ctx, Session{ID: id.SessionID, UserID: id.UserID})
}

// RevokeAll ends every session of userID.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	if s.store == nil {
		return nil
	}
	return s.store.DeleteAllForUser(ctx, userID)
}
