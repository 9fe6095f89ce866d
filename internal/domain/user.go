package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated application user (the "identity" held for
// the session's duration: id, email, display name).
type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Disabled    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credential couples a user with its stored password hash. The hash stays
// inside the identity service; it is never exposed through transports.
type Credential struct {
	User         User
	PasswordHash string
}

// RefreshToken represents a hashed refresh token stored in the database.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked returns true if the token has been revoked.
func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired returns true if the token has expired relative to now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// PasswordResetToken is a single-use, hashed token mailed to a user who
// requested a password reset.
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UsedAt    *time.Time
}

// IsUsed returns true if the token has already been consumed.
func (t *PasswordResetToken) IsUsed() bool {
	return t.UsedAt != nil
}

// IsExpired returns true if the token has expired relative to now.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
