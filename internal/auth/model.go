package auth

import "time"

// User is the credential record anchoring an identity. PasswordHash and
// TOTPSecret are set atomically at creation and never rotated.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	TOTPSecret   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
