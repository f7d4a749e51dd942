package helpers

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input beyond 72 bytes, so longer passwords are digested first.
const bcryptMaxInput = 72

// dummyHash is compared against when no account exists, keeping login timing flat.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("rockae-timing-equalizer"), bcrypt.DefaultCost)

func bcryptInput(plain string) []byte {
	if len(plain) <= bcryptMaxInput {
		return []byte(plain)
	}
	sum := sha256.Sum256([]byte(plain))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(bcryptInput(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(plain)) == nil
}

// DummyCompare burns the same work as a real comparison.
func DummyCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, bcryptInput(plain))
}
