// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager        repository.TransactionManager
	refreshTokenRepo repository.RefreshTokenRepository
	logger           *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	txManager repository.TransactionManager,
	refreshTokenRepo repository.RefreshTokenRepository,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		txManager:        txManager,
		refreshTokenRepo: refreshTokenRepo,
		logger:           logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetActiveSessions lists the user's sessions that are neither revoked nor expired.
func (srv *sessionService) GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	srv.log(ctx).Debug("Getting active sessions", slog.Any("userID", userID))

	// Single query operation - use direct repository instance
	sessions, err := srv.refreshTokenRepo.FindActiveTokensByUserID(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to get active sessions", slog.Any("error", err), slog.Any("userID", userID))

		return nil, errors.Wrap(err, "failed to get active sessions")
	}

	return sessions, nil
}

// TerminateSession revokes one of the user's sessions by its ID.
func (srv *sessionService) TerminateSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	srv.log(ctx).Info("Attempting to terminate session", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		// 1. Verify the session exists and belongs to the caller before revoking.
		session, err := refreshRepo.FindRefreshTokenByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return errors.Wrap(domainerrors.ErrSessionNotFound, "session lookup failed")
			}

			return errors.Wrap(err, "failed to find session")
		}

		if session.UserID != userID {
			srv.log(ctx).Warn("Session termination rejected", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

			return errors.Wrap(domainerrors.ErrAccessDenied, "session does not belong to user")
		}

		// 2. Revoke rather than delete so the record stays auditable.
		if err := refreshRepo.Revoke(ctx, sessionID); err != nil {
			return errors.Wrap(err, "failed to revoke session")
		}

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Failed to terminate session", slog.Any("error", err), slog.Any("userID", userID), slog.Any("sessionID", sessionID))

		return errors.Wrap(err, "failed to terminate session")
	}
	srv.log(ctx).Info("Successfully terminated session", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

	return nil
}
