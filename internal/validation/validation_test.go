package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_Valid(t *testing.T) {
	require.NoError(t, Password("Abc123!@", "a@b.com", ""))
	require.NoError(t, Password("Str0ng#pass", "someone@example.com", "Someone Else"))
}

func TestPassword_MissingCharacterClass(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"no uppercase", "abc123!@", ErrPasswordNoUpper},
		{"no lowercase", "ABC123!@", ErrPasswordNoLower},
		{"no digit", "Abcdef!@", ErrPasswordNoDigit},
		{"no special", "Abc12345", ErrPasswordNoSpecial},
		{"too short", "Ab1!", ErrPasswordTooShort},
		{"whitespace", "Abc 123!@", ErrPasswordWhitespace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Password(tt.password, "x@y.com", ""), tt.want)
		})
	}
}

func TestPassword_DenyList(t *testing.T) {
	// Deny-listed passwords are rejected before character-class checks run,
	// so the failure is attributed to the deny-list regardless of coverage.
	assert.ErrorIs(t, Password("password", "x@y.com", ""), ErrPasswordTooCommon)
	assert.ErrorIs(t, Password("QWERTY", "x@y.com", ""), ErrPasswordTooCommon)
	require.NoError(t, Password("P@ssw0rd1x", "x@y.com", ""))
}

func TestPassword_ContainsIdentity(t *testing.T) {
	assert.ErrorIs(t, Password("Linh123!@", "linh@example.com", ""), ErrPasswordContainsUser)
	assert.ErrorIs(t, Password("X!Trang99", "other@example.com", "Trang Nguyen"), ErrPasswordContainsUser)
	// Local-parts shorter than 3 runes are not treated as identity substrings.
	require.NoError(t, Password("Abc123!@", "a@b.com", ""))
}

func TestReason(t *testing.T) {
	assert.ErrorIs(t, Reason("too short"), ErrReasonTooShort)
	assert.ErrorIs(t, Reason("   spaced   "), ErrReasonTooShort)
	require.NoError(t, Reason("giá nguyên liệu tăng"))
	require.NoError(t, Reason("a valid ten char reason"))
}

func TestPhone(t *testing.T) {
	require.NoError(t, Phone("0912345678"))
	require.NoError(t, Phone("+84912345678"))
	assert.ErrorIs(t, Phone("12345"), ErrInvalidPhone)
	assert.ErrorIs(t, Phone("091234567a"), ErrInvalidPhone)
}
