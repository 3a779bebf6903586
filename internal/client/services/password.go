package services

import (
	"errors"
	"unicode"
)

// MinPasswordScore is the weakest score accepted when setting a new
// password.
const MinPasswordScore = 3

// ErrWeakPassword is returned when a new password scores below
// MinPasswordScore.
var ErrWeakPassword = errors.New("password too weak")

// PasswordStrength scores a candidate password 0..4: one point each for
// length of at least 8, mixed upper/lower case, a digit, and a symbol.
// It is a usability hint mirroring the reset wizard's meter, not a
// security guarantee.
func PasswordStrength(pw string) int {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	score := 0
	if len(pw) >= 8 {
		score++
	}
	if hasUpper && hasLower {
		score++
	}
	if hasDigit {
		score++
	}
	if hasSymbol {
		score++
	}
	return score
}
