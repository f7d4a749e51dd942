package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	"github.com/oksasatya/rockae-api/internal/domain/repository"
	"github.com/oksasatya/rockae-api/pkg/helpers"
	"github.com/oksasatya/rockae-api/pkg/mailer"
	"github.com/oksasatya/rockae-api/pkg/mailer/templates"
	"github.com/oksasatya/rockae-api/pkg/validation"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidToken       = "Invalid token"
	msgEmailTaken         = "user with this email already exists."
	msgUsernameTaken      = "A user with that username already exists."
)

// LinkBuilder turns a token into the front-end URL mailed to the user.
type LinkBuilder interface {
	VerifyURL(token string) string
	ResetPasswordURL(token string) string
}

// AccountService runs registration, login and the verification and
// password-reset token lifecycles.
type AccountService struct {
	users    repository.UserRepository
	tokens   *TokenIssuer
	sessions *SessionService
	mail     mailer.Sender
	composer *templates.Composer
	links    LinkBuilder
	logger   logrus.FieldLogger
}

func NewAccountService(
	users repository.UserRepository,
	tokens *TokenIssuer,
	sessions *SessionService,
	mail mailer.Sender,
	composer *templates.Composer,
	links LinkBuilder,
	logger logrus.FieldLogger,
) *AccountService {
	return &AccountService{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		mail:     mail,
		composer: composer,
		links:    links,
		logger:   logger,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified, active account. The password policy is
// enforced on reset only.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	details := map[string]string{}
	if in.Username == "" {
		details["username"] = "This field is required."
	}
	if in.Email == "" {
		details["email"] = "This field is required."
	} else if !validation.ValidEmail(in.Email) {
		details["email"] = "Enter a valid email address."
	}
	if in.Password == "" {
		details["password"] = "This field is required."
	} else {
		checkLength(details, "password", in.Password, 128)
	}
	if len(details) > 0 {
		return nil, apperror.Validation("Invalid registration data", details)
	}

	if err := s.ensureUnique(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", u.UserID).Info("user registered")
	return u, nil
}

func (s *AccountService) ensureUnique(ctx context.Context, email, username string) error {
	details := map[string]string{}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		details["email"] = msgEmailTaken
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		details["username"] = msgUsernameTaken
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return err
	}
	if len(details) > 0 {
		return apperror.Validation("Invalid registration data", details)
	}
	return nil
}

// Login checks credentials and opens a session. Verification is not required.
func (s *AccountService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			helpers.DummyCompare(password)
			return nil, TokenPair{}, apperror.Authentication(msgInvalidCredentials)
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) || !u.IsActive {
		return nil, TokenPair{}, apperror.Authentication(msgInvalidCredentials)
	}
	pair, err := s.sessions.Issue(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// RequestVerificationEmail issues a fresh verification token for userID,
// replacing any earlier one, and mails the link. A delivery failure is
// reported but the stored token stays valid.
func (s *AccountService) RequestVerificationEmail(ctx context.Context, userID string) error {
	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperror.AlreadyVerified("User already verified")
	}

	token, expiresAt, err := s.tokens.IssueVerificationToken()
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.users.SetVerificationToken(ctx, u.ID, token, expiresAt); err != nil {
		return err
	}

	r, err := s.composer.Render(templates.VerifyEmail, u.Username,
		templates.WithActionURL(s.links.VerifyURL(token)),
		templates.WithExpiresAt(expiresAt))
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.mail.Send(ctx, message(u, r)); err != nil {
		s.logger.WithError(err).WithField("user_id", u.UserID).Error("send verification email failed")
		return apperror.Dependency("Failed to send verification email", err)
	}
	s.logger.WithField("user_id", u.UserID).Info("verification email sent")
	return nil
}

// VerifyAccount consumes a verification token.
func (s *AccountService) VerifyAccount(ctx context.Context, token string) error {
	if token == "" {
		return apperror.InvalidToken(msgInvalidToken)
	}
	u, err := s.users.ConsumeVerificationToken(ctx, token, s.tokens.Now())
	if err == nil {
		s.logger.WithField("user_id", u.UserID).Info("account verified")
		return nil
	}
	if !apperror.IsKind(err, apperror.KindNotFound) {
		return err
	}
	return s.classifyUnconsumed(ctx, s.users.GetByVerificationToken, token, "Verification token has expired.",
		func(u *entity.User) *time.Time { return u.VerificationTokenExpiresAt })
}

// RequestPasswordReset mails a reset link when email belongs to an active
// account. The outcome is identical whether or not it does.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !validation.ValidEmail(email) {
		return apperror.Validation("Enter a valid email address.", map[string]string{"email": "Enter a valid email address."})
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			s.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return err
	}
	log := s.logger.WithField("user_id", u.UserID)
	if !u.IsActive {
		log.Info("password reset requested for inactive account")
		return nil
	}

	token, expiresAt, err := s.tokens.IssueResetToken()
	if err != nil {
		log.WithError(err).Error("issue reset token failed")
		return nil
	}
	if err := s.users.SetResetToken(ctx, u.ID, token, expiresAt); err != nil {
		log.WithError(err).Error("store reset token failed")
		return nil
	}
	r, err := s.composer.Render(templates.ForgotPassword, u.Username,
		templates.WithActionURL(s.links.ResetPasswordURL(token)),
		templates.WithExpiresAt(expiresAt))
	if err != nil {
		log.WithError(err).Error("render reset email failed")
		return nil
	}
	if err := s.mail.Send(ctx, message(u, r)); err != nil {
		log.WithError(err).Error("send password reset email failed")
		return nil
	}
	log.Info("password reset email sent")
	return nil
}

// ResetPassword consumes a reset token, replaces the password and ends all
// sessions of the account.
func (s *AccountService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if password != confirm {
		return apperror.Validation("Passwords do not match", map[string]string{"confirm_password": "Passwords do not match."})
	}
	if msg := validation.CheckPassword(password); msg != "" {
		return apperror.Validation(msg, map[string]string{"password": msg})
	}
	if token == "" {
		return apperror.InvalidToken(msgInvalidToken)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return apperror.Internal(err)
	}
	u, err := s.users.ConsumeResetToken(ctx, token, hash, s.tokens.Now())
	if err != nil {
		if !apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}
		return s.classifyUnconsumed(ctx, s.users.GetByResetToken, token, "Reset token expired",
			func(u *entity.User) *time.Time { return u.ResetPasswordTokenExpiresAt })
	}

	log := s.logger.WithField("user_id", u.UserID)
	if err := s.sessions.RevokeAll(ctx, u.UserID); err != nil {
		log.WithError(err).Warn("revoke sessions after password reset failed")
	}
	if r, err := s.composer.Render(templates.PasswordChanged, u.Username); err == nil {
		if err := s.mail.Send(ctx, message(u, r)); err != nil {
			log.WithError(err).Warn("send password changed notice failed")
		}
	}
	log.Info("password reset")
	return nil
}

// classifyUnconsumed explains why a token could not be consumed: it is
// either unknown (or already used) or it exists but has expired. A token
// without an expiry counts as unknown.
func (s *AccountService) classifyUnconsumed(
	ctx context.Context,
	lookup func(context.Context, string) (*entity.User, error),
	token, expiredMsg string,
	expiry func(*entity.User) *time.Time,
) error {
	u, err := lookup(ctx, token)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return apperror.InvalidToken(msgInvalidToken)
		}
		return err
	}
	if exp := expiry(u); exp != nil && IsExpired(exp, s.tokens.Now()) {
		return apperror.ExpiredToken(expiredMsg)
	}
	return apperror.InvalidToken(msgInvalidToken)
}

func message(u *entity.User, r templates.Rendered) mailer.Message {
	return mailer.Message{
		Subject: r.Subject,
		Body:    r.Text,
		HTML:    r.HTML,
		To:      []mailer.Recipient{{Name: u.Username, Email: u.Email}},
	}
}
