package impl

import (
	"context"
	"testing"
	"time"

	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionFixture() (*fakeStore, usecase.SessionUsecase) {
	store := newFakeStore()
	srv := NewSessionService(&fakeTxManager{store: store}, &fakeRefreshTokenRepo{store: store}, testLogger())

	return store, srv
}

func seedSession(store *fakeStore, userID uuid.UUID, revoked bool, expiresAt time.Time) *entity.RefreshToken {
	token := &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: uuid.NewString(),
		ExpiresAt: expiresAt,
		Revoked:   revoked,
		CreatedAt: time.Now(),
	}
	store.refreshTokens[token.ID] = token

	return token
}

func TestSessionService_GetActiveSessions_FiltersUnusable(t *testing.T) {
	store, srv := newSessionFixture()
	userID := uuid.New()

	active := seedSession(store, userID, false, time.Now().Add(time.Hour))
	seedSession(store, userID, true, time.Now().Add(time.Hour))   // revoked
	seedSession(store, userID, false, time.Now().Add(-time.Hour)) // expired
	seedSession(store, uuid.New(), false, time.Now().Add(time.Hour))

	sessions, err := srv.GetActiveSessions(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, active.ID, sessions[0].ID)
}

func TestSessionService_TerminateSession_Success(t *testing.T) {
	store, srv := newSessionFixture()
	userID := uuid.New()
	session := seedSession(store, userID, false, time.Now().Add(time.Hour))

	err := srv.TerminateSession(context.Background(), userID, session.ID)

	require.NoError(t, err)
	assert.True(t, store.refreshTokens[session.ID].Revoked)
}

func TestSessionService_TerminateSession_NotFound(t *testing.T) {
	_, srv := newSessionFixture()

	err := srv.TerminateSession(context.Background(), uuid.New(), uuid.New())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
}

func TestSessionService_TerminateSession_OtherUsersSession(t *testing.T) {
	store, srv := newSessionFixture()
	ownerID := uuid.New()
	session := seedSession(store, ownerID, false, time.Now().Add(time.Hour))

	err := srv.TerminateSession(context.Background(), uuid.New(), session.ID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccessDenied))
	assert.False(t, store.refreshTokens[session.ID].Revoked)
}
