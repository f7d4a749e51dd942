package application

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{64}$`)

func TestTokenIssuer_Expiries(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	ti := NewTokenIssuer(24*time.Hour, time.Hour, WithClock(func() time.Time { return now }))

	tok, exp, err := ti.IssueVerificationToken()
	require.NoError(t, err)
	assert.Regexp(t, tokenPattern, tok)
	assert.Equal(t, now.Add(24*time.Hour), exp)

	tok2, exp, err := ti.IssueResetToken()
	require.NoError(t, err)
	assert.Regexp(t, tokenPattern, tok2)
	assert.Equal(t, now.Add(time.Hour), exp)
	assert.NotEqual(t, tok, tok2)
}

func TestTokenIssuer_InjectedRandom(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte{0}, TokenLength))
	ti := NewTokenIssuer(time.Hour, time.Hour, WithRandom(src))
	tok, _, err := ti.IssueResetToken()
	require.NoError(t, err)
	assert.Equal(t, string(bytes.Repeat([]byte{'a'}, TokenLength)), tok)

	_, _, err = ti.IssueResetToken()
	assert.Error(t, err, "exhausted entropy source must fail, not return a weak token")
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.True(t, IsExpired(nil, now))
	assert.True(t, IsExpired(&past, now))
	assert.False(t, IsExpired(&now, now))
	assert.False(t, IsExpired(&future, now))
}
