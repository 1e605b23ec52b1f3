// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a long-lived, authorized user session.
// It is used to obtain a new token pair after the access token expires, without requiring credentials.
// A token is usable only while it is not revoked and not past its expiry.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // Stores a SHA-256 hash of the raw refresh token for secure comparison in the database.
	ExpiresAt time.Time // The exact time when this refresh token will expire and become invalid.
	Revoked   bool      // Set once the token has been rotated, logged out or remotely terminated. One-way.
	CreatedAt time.Time // Timestamp of when this session was created (i.e., when the user logged in).
}

// IsUsable reports whether the token can still redeem a new token pair at the given instant.
func (t *RefreshToken) IsUsable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// Identity carries the authenticated caller's claims through request handling.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}
