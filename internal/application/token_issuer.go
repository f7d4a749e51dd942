package application

import (
	"io"
	"time"

	"github.com/oksasatya/rockae-api/pkg/helpers"
)

// TokenLength is the size of verification and reset tokens. 64 symbols over
// a 62-letter alphabet carry about 381 bits of entropy.
const TokenLength = 64

// TokenIssuer mints single-use account tokens and decides their expiry.
type TokenIssuer struct {
	verifyTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
	rand      io.Reader
}

type TokenIssuerOption func(*TokenIssuer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TokenIssuerOption {
	return func(t *TokenIssuer) { t.now = now }
}

// WithRandom replaces crypto/rand as the entropy source.
func WithRandom(r io.Reader) TokenIssuerOption {
	return func(t *TokenIssuer) { t.rand = r }
}

func NewTokenIssuer(verifyTTL, resetTTL time.Duration, opts ...TokenIssuerOption) *TokenIssuer {
	t := &TokenIssuer{verifyTTL: verifyTTL, resetTTL: resetTTL, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now is the issuer's clock, truncated to microseconds to match PostgreSQL.
func (t *TokenIssuer) Now() time.Time {
	return t.now().UTC().Truncate(time.Microsecond)
}

func (t *TokenIssuer) IssueVerificationToken() (string, time.Time, error) {
	return t.issue(t.verifyTTL)
}

func (t *TokenIssuer) IssueResetToken() (string, time.Time, error) {
	return t.issue(t.resetTTL)
}

func (t *TokenIssuer) issue(ttl time.Duration) (string, time.Time, error) {
	tok, err := helpers.RandomString(t.rand, TokenLength, helpers.AlphaNumeric)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, t.Now().Add(ttl), nil
}

// IsExpired reports whether now is past expiresAt. A nil expiry means no
// token was issued; it is reported expired so it can never be accepted.
func IsExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return now.After(*expiresAt)
}
