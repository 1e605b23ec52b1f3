// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase defines the interface for session management operations.
// Each active refresh token is one session.
type SessionUsecase interface {
	// GetActiveSessions lists the user's sessions that are neither revoked nor expired.
	GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)

	// TerminateSession revokes one of the user's sessions by its ID.
	// Terminating another user's session is rejected without revealing
	// whether the session exists.
	TerminateSession(ctx context.Context, userID, sessionID uuid.UUID) error
}
