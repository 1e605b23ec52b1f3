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

func newAuthFixture() (*fakeStore, usecase.AuthUsecase) {
	store := newFakeStore()
	srv := &authService{
		txManager:        &fakeTxManager{store: store},
		userRepo:         &fakeUserRepo{store: store},
		refreshTokenRepo: &fakeRefreshTokenRepo{store: store},
		hasher:           stubHasher{},
		tokenService:     &stubTokenService{},
		logger:           testLogger(),
	}

	return store, srv
}

func customerInput(email, phone string) *usecase.RegisterCustomerInput {
	return &usecase.RegisterCustomerInput{
		Email:       email,
		Password:    "s3cret-pass",
		FirstName:   "Alice",
		LastName:    "Smith",
		PhoneNumber: phone,
	}
}

func TestAuthService_RegisterCustomer_Success(t *testing.T) {
	_, srv := newAuthFixture()
	ctx := context.Background()

	out, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))

	require.NoError(t, err)
	require.NotNil(t, out.User)
	assert.NotEqual(t, uuid.Nil, out.User.ID)
	assert.Equal(t, entity.RoleCustomer, out.User.Role)
	assert.Equal(t, "hashed:s3cret-pass", out.User.PasswordHash)
	require.NotNil(t, out.User.Info)
	assert.Equal(t, "+15550001", out.User.Info.PhoneNumber)
	assert.Nil(t, out.User.Farmer)
}

func TestAuthService_RegisterFarmer_AttachesFarmProfile(t *testing.T) {
	_, srv := newAuthFixture()
	ctx := context.Background()

	out, err := srv.RegisterFarmer(ctx, &usecase.RegisterFarmerInput{
		Email:       "bob@farm.example",
		Password:    "s3cret-pass",
		FirstName:   "Bob",
		LastName:    "Jones",
		PhoneNumber: "+15550002",
		FarmName:    "Green Acres",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleFarmer, out.User.Role)
	require.NotNil(t, out.User.Farmer)
	assert.Equal(t, "Green Acres", out.User.Farmer.FarmName)
}

func TestAuthService_RegisterCustomer_DuplicateEmail(t *testing.T) {
	_, srv := newAuthFixture()
	ctx := context.Background()

	_, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))
	require.NoError(t, err)

	_, err = srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550099"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailAlreadyExists))
}

func TestAuthService_RegisterCustomer_DuplicatePhone(t *testing.T) {
	_, srv := newAuthFixture()
	ctx := context.Background()

	_, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))
	require.NoError(t, err)

	_, err = srv.RegisterCustomer(ctx, customerInput("other@example.com", "+15550001"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPhoneAlreadyExists))
}

func TestAuthService_Login_Success(t *testing.T) {
	store, srv := newAuthFixture()
	ctx := context.Background()

	_, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))
	require.NoError(t, err)

	pair, err := srv.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// A session row exists for the issued refresh token.
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.refreshTokens, 1)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	_, srv := newAuthFixture()
	ctx := context.Background()

	_, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))
	require.NoError(t, err)

	_, err = srv.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	_, srv := newAuthFixture()

	_, err := srv.Login(context.Background(), &usecase.LoginInput{Email: "nobody@example.com", Password: "whatever"})

	require.Error(t, err)
	// Unknown account and wrong password are indistinguishable to the caller.
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_RefreshToken_RotatesSession(t *testing.T) {
	store, srv := newAuthFixture()
	ctx := context.Background()

	_, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))
	require.NoError(t, err)

	loginPair, err := srv.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshedPair, err := srv.RefreshToken(ctx, loginPair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, loginPair.RefreshToken, refreshedPair.RefreshToken)

	// Two session rows now exist: the revoked original and its replacement.
	store.mu.Lock()
	revokedCount := 0
	for _, token := range store.refreshTokens {
		if token.Revoked {
			revokedCount++
		}
	}
	store.mu.Unlock()
	assert.Equal(t, 2, len(store.refreshTokens))
	assert.Equal(t, 1, revokedCount)

	// Replaying the consumed token is rejected as revoked.
	_, err = srv.RefreshToken(ctx, loginPair.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenRevoked))

	// The replacement still works.
	_, err = srv.RefreshToken(ctx, refreshedPair.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_RefreshToken_Unknown(t *testing.T) {
	_, srv := newAuthFixture()

	_, err := srv.RefreshToken(context.Background(), "never-issued")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenNotFound))
}

func TestAuthService_RefreshToken_Expired(t *testing.T) {
	store, srv := newAuthFixture()
	ctx := context.Background()

	_, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))
	require.NoError(t, err)

	pair, err := srv.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	store.mu.Lock()
	for _, token := range store.refreshTokens {
		token.ExpiresAt = time.Now().Add(-time.Minute)
	}
	store.mu.Unlock()

	_, err = srv.RefreshToken(ctx, pair.RefreshToken)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenExpired))
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	store, srv := newAuthFixture()
	ctx := context.Background()

	_, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))
	require.NoError(t, err)

	pair, err := srv.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, srv.Logout(ctx, pair.RefreshToken))

	store.mu.Lock()
	for _, token := range store.refreshTokens {
		assert.True(t, token.Revoked)
	}
	store.mu.Unlock()

	// A second logout with the same token, or one that never existed, still succeeds.
	require.NoError(t, srv.Logout(ctx, pair.RefreshToken))
	require.NoError(t, srv.Logout(ctx, "never-issued"))
}

func TestAuthService_LogoutAllDevices(t *testing.T) {
	store, srv := newAuthFixture()
	ctx := context.Background()

	out, err := srv.RegisterCustomer(ctx, customerInput("alice@example.com", "+15550001"))
	require.NoError(t, err)

	for range 3 {
		_, err := srv.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
	}

	require.NoError(t, srv.LogoutAllDevices(ctx, out.User.ID))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.refreshTokens, 3)
	for _, token := range store.refreshTokens {
		assert.True(t, token.Revoked)
	}
}
