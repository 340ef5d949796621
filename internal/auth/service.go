package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"secure-store/internal/qr"
	"secure-store/internal/totp"
)

const defaultIssuer = "SecureApp"

// Service composes the password vault, secret codec, TOTP verifier and
// token issuer into the register, enrollment and login flows. It holds no
// state of its own beyond injected collaborators.
type Service struct {
	store  UserStore
	tokens *TokenIssuer
	issuer string
	qrSize int
}

func NewService(store UserStore, tokens *TokenIssuer, issuer string) *Service {
	if strings.TrimSpace(issuer) == "" {
		issuer = defaultIssuer
	}
	return &Service{
		store:  store,
		tokens: tokens,
		issuer: issuer,
		qrSize: qr.DefaultSize,
	}
}

// RegisterResult carries the raw TOTP secret back to the caller exactly
// once, as a manual enrollment fallback. It is never returned again.
type RegisterResult struct {
	User       User
	TOTPSecret string
}

// Register hashes the password, generates a fresh TOTP secret and creates
// the credential record in a single insert, so a user is never
// half-registered. A username conflict is terminal (ErrUsernameTaken).
func (s *Service) Register(ctx context.Context, username, password string) (RegisterResult, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return RegisterResult{}, err
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return RegisterResult{}, err
	}

	user, err := s.store.Create(ctx, username, hash, secret)
	if err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{User: user, TOTPSecret: secret}, nil
}

// EnrollmentQR renders the stored secret's provisioning URI as a
// base64-encoded PNG for authenticator apps. ErrUserNotFound if the
// username does not resolve.
func (s *Service) EnrollmentQR(ctx context.Context, username string) (string, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	uri, err := totp.ProvisioningURI(user.TOTPSecret, user.Username, s.issuer)
	if err != nil {
		return "", fmt.Errorf("build provisioning uri: %w", err)
	}

	image, err := qr.EncodeBase64PNG(uri, s.qrSize)
	if err != nil {
		return "", fmt.Errorf("render enrollment qr: %w", err)
	}

	return image, nil
}

// Login checks the three factors in strict order: record lookup and
// password mismatch both collapse into ErrInvalidCredentials so an
// attacker cannot tell an unknown user from a wrong password, while a
// failed second factor returns the distinct ErrInvalidSecondFactor. On
// success it issues a token bound to the record's id.
func (s *Service) Login(ctx context.Context, username, password, otpCode string) (string, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	ok, err := totp.Validate(user.TOTPSecret, otpCode, now)
	if err != nil || !ok {
		return "", ErrInvalidSecondFactor
	}

	return s.tokens.Issue(user.ID, now)
}
