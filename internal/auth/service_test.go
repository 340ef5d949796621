package auth

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-store/internal/totp"
)

func newTestService(store UserStore) *Service {
	return NewService(store, NewTokenIssuer("test-signing-key", 10*time.Minute), "SecureApp")
}

func TestRegisterReturnsSecretOnce(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	service := newTestService(store)

	result, err := service.Register(context.Background(), "alice", "p@ss1word")
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z2-7]+$`, result.TOTPSecret)
	assert.NotEmpty(t, result.User.ID)

	// The record was created atomically with both factors set.
	stored, err := store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, result.TOTPSecret, stored.TOTPSecret)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "p@ss1word", stored.PasswordHash)
}

func TestRegisterUsernameTaken(t *testing.T) {
	t.Parallel()

	service := newTestService(newMemoryStore())

	_, err := service.Register(context.Background(), "alice", "p@ss1word")
	require.NoError(t, err)

	_, err = service.Register(context.Background(), "alice", "another-password")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	t.Parallel()

	service := newTestService(newMemoryStore())

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Register(context.Background(), "alice", "p@ss1word")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrUsernameTaken)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestLoginHappyPath(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	service := newTestService(store)

	result, err := service.Register(context.Background(), "alice", "p@ss1word")
	require.NoError(t, err)

	code, err := totp.Code(result.TOTPSecret, time.Now())
	require.NoError(t, err)

	token, err := service.Login(context.Background(), "alice", "p@ss1word", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := NewTokenIssuer("test-signing-key", 10*time.Minute).Validate(token, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)
}

func TestLoginFailureModes(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	service := newTestService(store)

	result, err := service.Register(context.Background(), "alice", "p@ss1word")
	require.NoError(t, err)

	freshCode, err := totp.Code(result.TOTPSecret, time.Now())
	require.NoError(t, err)

	// A code from two steps ago is outside the ±1 step window.
	staleCode, err := totp.Code(result.TOTPSecret, time.Now().Add(-2*totp.Period*time.Second))
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		otp      string
		wantErr  error
	}{
		{"unknown user", "bob", "p@ss1word", freshCode, ErrInvalidCredentials},
		{"wrong password", "alice", "wrong-password", freshCode, ErrInvalidCredentials},
		{"stale otp", "alice", "p@ss1word", staleCode, ErrInvalidSecondFactor},
		{"empty otp", "alice", "p@ss1word", "", ErrInvalidSecondFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Login(context.Background(), tt.username, tt.password, tt.otp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoginStoreUnavailable(t *testing.T) {
	t.Parallel()

	service := newTestService(unavailableStore{})

	_, err := service.Login(context.Background(), "alice", "p@ss1word", "123456")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnrollmentQR(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	service := newTestService(store)

	_, err := service.Register(context.Background(), "alice", "p@ss1word")
	require.NoError(t, err)

	image, err := service.EnrollmentQR(context.Background(), "alice")
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(image)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, decoded[:4])
}

func TestEnrollmentQRUserNotFound(t *testing.T) {
	t.Parallel()

	service := newTestService(newMemoryStore())

	_, err := service.EnrollmentQR(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
