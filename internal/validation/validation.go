package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrPasswordNoUpper      = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower      = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit      = errors.New("password must contain a digit")
	ErrPasswordNoSpecial    = errors.New("password must contain a special character")
	ErrPasswordWhitespace   = errors.New("password must not contain whitespace")
	ErrPasswordTooCommon    = errors.New("password is too common")
	ErrPasswordContainsUser = errors.New("password must not contain your email or name")
	ErrReasonTooShort       = errors.New("reason must be at least 10 characters")
	ErrInvalidPhone         = errors.New("invalid phone number")
)

// commonPasswords is a small deny-list; matching is exact and
// case-insensitive, regardless of character-class coverage.
var commonPasswords = map[string]struct{}{
	"123456":    {},
	"12345678":  {},
	"123456789": {},
	"password":  {},
	"password1": {},
	"qwerty":    {},
	"abc123":    {},
	"111111":    {},
	"iloveyou":  {},
	"admin123":  {},
}

const MinReasonLength = 10

var phoneRe = regexp.MustCompile(`^(0|\+84)\d{9}$`)

// Password checks the platform password policy: minimum 6 characters, at
// least one of each character class, no whitespace, not on the deny-list,
// and not containing the owner's email local-part or name. Identity
// substrings shorter than 3 characters are skipped so that trivially short
// local-parts do not reject every password sharing a letter.
func Password(password, email, name string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return ErrPasswordTooCommon
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return ErrPasswordWhitespace
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper {
		return ErrPasswordNoUpper
	}
	if !hasLower {
		return ErrPasswordNoLower
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	if !hasSpecial {
		return ErrPasswordNoSpecial
	}

	for _, ident := range identitySubstrings(email, name) {
		if strings.Contains(lower, ident) {
			return ErrPasswordContainsUser
		}
	}
	return nil
}

func identitySubstrings(email, name string) []string {
	var out []string
	if local, _, found := strings.Cut(email, "@"); found && len(local) >= 3 {
		out = append(out, strings.ToLower(local))
	}
	for _, part := range strings.Fields(name) {
		if len(part) >= 3 {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

// Reason enforces the minimum length for update/delete request reasons.
// Length is counted in runes so Vietnamese text is not penalized.
func Reason(reason string) error {
	if len([]rune(strings.TrimSpace(reason))) < MinReasonLength {
		return ErrReasonTooShort
	}
	return nil
}

func Phone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}
