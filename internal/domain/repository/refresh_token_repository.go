// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for refresh token persistence.
var (
	// ErrRefreshTokenNotFound is returned when a refresh token is not found.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// RefreshTokenRepository defines the interface for refresh token and session management operations.
// This supports multi-device login and remote logout functionality.
type RefreshTokenRepository interface {
	// CreateRefreshToken persists a new refresh token, representing a user session.
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	// FindRefreshTokenByHash retrieves a refresh token record by its securely stored hash,
	// regardless of its revoked or expired state. Callers decide usability.
	FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// FindRefreshTokenByID retrieves a refresh token record by its unique ID.
	FindRefreshTokenByID(ctx context.Context, id uuid.UUID) (*entity.RefreshToken, error)

	// FindActiveTokensByUserID retrieves all usable (non-revoked, non-expired)
	// refresh tokens for a specific user, newest first. This allows users to
	// see all their active sessions across different devices.
	FindActiveTokensByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)

	// Revoke marks a single refresh token as revoked by its ID.
	Revoke(ctx context.Context, id uuid.UUID) error

	// RevokeByHash marks a refresh token as revoked by its hash. Revoking a
	// token that is already revoked or absent is not an error.
	RevokeByHash(ctx context.Context, tokenHash string) error

	// RevokeAllByUserID marks all of a user's refresh tokens as revoked.
	// This implements "logout from all devices".
	RevokeAllByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredRefreshTokens removes all expired refresh tokens from the database.
	// This is called periodically for cleanup.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}
