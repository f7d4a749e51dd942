package validation

import "strings"

const (
	PasswordMinLength = 8
	PasswordMaxLength = 128

	passwordSymbols = "@$!%*#?&"
)

// CheckPassword returns an empty string when plain satisfies the password
// policy, otherwise a user-facing explanation.
func CheckPassword(plain string) string {
	if len(plain) < PasswordMinLength || len(plain) > PasswordMaxLength {
		return "Password must be between 8 and 128 characters."
	}
	var letter, digit bool
	for _, r := range plain {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
		default:
			return "Password may only contain letters, digits and @$!%*#?&."
		}
	}
	if !letter || !digit {
		return "Password must contain at least one letter and one digit."
	}
	return ""
}
