package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserStore is the narrow persistence contract the core needs. Each call is
// its own atomic unit; no flow spans more than one write.
type UserStore interface {
	// FindByUsername returns ErrUserNotFound when no record exists.
	FindByUsername(ctx context.Context, username string) (User, error)
	// FindByID returns ErrUserNotFound when no record exists.
	FindByID(ctx context.Context, id string) (User, error)
	// Create inserts a full credential record. Username uniqueness is
	// enforced by the store's constraint at insert time, never by a
	// check-then-insert; a conflict returns ErrUsernameTaken.
	Create(ctx context.Context, username, passwordHash, totpSecret string) (User, error)
}

const uniqueViolation = "23505"

// Repository is the Postgres-backed UserStore.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, totp_secret, created_at, updated_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.TOTPSecret, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, errors.Join(ErrStoreUnavailable, fmt.Errorf("query user by username: %w", err))
	}

	return user, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, totp_secret, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.TOTPSecret, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, errors.Join(ErrStoreUnavailable, fmt.Errorf("query user by id: %w", err))
	}

	return user, nil
}

func (r *Repository) Create(ctx context.Context, username, passwordHash, totpSecret string) (User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return User{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           id.String(),
		Username:     username,
		PasswordHash: passwordHash,
		TOTPSecret:   totpSecret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, totp_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, user.ID, user.Username, user.PasswordHash, user.TOTPSecret, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrUsernameTaken
		}
		return User{}, errors.Join(ErrStoreUnavailable, fmt.Errorf("insert user: %w", err))
	}

	return user, nil
}
