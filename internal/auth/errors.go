package auth

import (
	"errors"
	"fmt"
)

var (
	ErrUsernameTaken       = errors.New("username already taken")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidSecondFactor = errors.New("invalid 2FA code")
	ErrMissingToken        = errors.New("missing authorization token")
	ErrStoreUnavailable    = errors.New("credential store unavailable")

	// ErrInvalidToken is the umbrella every token failure matches via
	// errors.Is. The specific kinds below stay distinct for callers that
	// need them (logging, tests); the HTTP boundary reports them uniformly.
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenMalformed    = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenBadSignature = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrTokenExpired      = fmt.Errorf("%w: expired", ErrInvalidToken)
)
