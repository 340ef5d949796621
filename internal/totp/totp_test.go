package totp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Base32 of "12345678901234567890", the RFC 6238 reference secret.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	secret, err := GenerateSecret()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Regexp(t, secretRegex, secret)

	other, err := GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestCodeKnownVector(t *testing.T) {
	t.Parallel()

	// RFC 6238 Appendix B: T = 59 computes over counter 1; the 6-digit
	// truncation of the reference vector is 287082.
	code, err := Code(rfcSecret, time.Unix(59, 0))
	require.NoError(t, err)
	assert.Equal(t, "287082", code)
}

func TestValidateWindow(t *testing.T) {
	t.Parallel()

	secret, err := GenerateSecret()
	require.NoError(t, err)

	at := time.Unix(1700000000, 0)
	code, err := Code(secret, at)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"current step", at, true},
		{"one step later", at.Add(Period * time.Second), true},
		{"one step earlier", at.Add(-Period * time.Second), true},
		{"two steps later", at.Add(2 * Period * time.Second), false},
		{"two steps earlier", at.Add(-2 * Period * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := Validate(secret, code, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	t.Parallel()

	secret, err := GenerateSecret()
	require.NoError(t, err)
	now := time.Now()

	ok, err := Validate(secret, "12345", now)
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.False(t, ok)

	ok, err = Validate(secret, "abcdef", now)
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.False(t, ok)

	_, err = Validate("not base32!", "123456", now)
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()

	uri, err := ProvisioningURI("ABCDEFGHIJKLMNOP", "alice", "SecureApp")
	require.NoError(t, err)
	assert.Equal(t,
		"otpauth://totp/SecureApp:alice?algorithm=SHA1&digits=6&issuer=SecureApp&period=30&secret=ABCDEFGHIJKLMNOP",
		uri)

	_, err = ProvisioningURI("", "alice", "SecureApp")
	assert.Error(t, err)

	_, err = ProvisioningURI("ABCDEFGHIJKLMNOP", "", "SecureApp")
	assert.Error(t, err)
}
