// Package totp implements RFC 6238 time-based one-time passwords and the
// otpauth provisioning URI used to enroll authenticator apps.
//
// Validation accepts the current 30-second step plus one step on either
// side. The ±1 skew window is a deliberate choice to absorb clock drift
// between the server and the authenticator device.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the number of digits in a generated code.
	Digits = 6
	// Period is the code validity window in seconds.
	Period = 30
	// SkewSteps is how many steps either side of "now" Validate accepts.
	SkewSteps = 1

	secretBytes = 20 // 160-bit secret, RFC 4226 recommendation
)

var (
	ErrInvalidSecret = errors.New("invalid totp secret")
	ErrInvalidCode   = errors.New("invalid otp code format")

	secretRegex = regexp.MustCompile(`^[A-Z2-7]+$`)
	codeRegex   = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))
)

// GenerateSecret returns a fresh base32-encoded shared secret drawn from a
// cryptographically secure random source.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// ProvisioningURI builds a Key URI (otpauth://totp/...) understood by
// authenticator apps. Pure function, no I/O.
func ProvisioningURI(secret, account, issuer string) (string, error) {
	if _, err := decodeSecret(secret); err != nil {
		return "", err
	}
	if account == "" || issuer == "" {
		return "", errors.New("account and issuer labels are required")
	}

	label := fmt.Sprintf("%s:%s", url.PathEscape(issuer), url.PathEscape(account))

	query := url.Values{}
	query.Set("secret", strings.ToUpper(strings.TrimSpace(secret)))
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// Code returns the one-time code for the step containing t.
func Code(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter := t.Unix() / Period
	return fmt.Sprintf("%0*d", Digits, hotp(key, counter)), nil
}

// Validate reports whether candidate matches the code for the step
// containing t or any step within SkewSteps of it.
func Validate(secret, candidate string, t time.Time) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	candidate = strings.TrimSpace(candidate)
	if !codeRegex.MatchString(candidate) {
		return false, ErrInvalidCode
	}

	counter := t.Unix() / Period
	for i := -SkewSteps; i <= SkewSteps; i++ {
		code := fmt.Sprintf("%0*d", Digits, hotp(key, counter+int64(i)))
		if hmac.Equal([]byte(code), []byte(candidate)) {
			return true, nil
		}
	}

	return false, nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	if !secretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return nil, ErrInvalidSecret
	}

	return key, nil
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm.
func hotp(key []byte, counter int64) int {
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Dynamic truncation: last 4 bits pick the offset, MSB is cleared to
	// keep the value positive.
	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]) << 16) |
		(int(sum[offset+2]) << 8) |
		int(sum[offset+3])

	return code % int(math.Pow10(Digits))
}
