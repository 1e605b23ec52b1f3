package auth

import (
	"testing"
	"time"

	"farmlink/config"
	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(accessTTL time.Duration) *config.Config {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{
		AccessSecret:    "test_access_secret_key_very_long_for_testing",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: time.Hour * 24 * 7,
	}

	return cfg
}

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(15 * time.Minute))
	require.NoError(t, err)

	user := &entity.User{
		ID:    uuid.New(),
		Email: "farmer@example.com",
		Role:  entity.RoleFarmer,
	}

	accessToken, err := jwtService.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)

	claims, err := jwtService.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, entity.RoleFarmer.String(), claims.Role)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestJWTService_ExpiredAccessToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(-time.Minute))
	require.NoError(t, err)

	user := &entity.User{ID: uuid.New(), Email: "a@b.c", Role: entity.RoleCustomer}

	accessToken, err := jwtService.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken(accessToken)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrAccessTokenExpired)
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(15 * time.Minute))
	require.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken("clearly-not-a-jwt-token-format")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestJWTService_WrongSecret(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(15 * time.Minute))
	require.NoError(t, err)

	otherCfg := newTestConfig(15 * time.Minute)
	otherCfg.Auth.AccessSecret = "a_completely_different_secret_key_for_testing"
	otherService, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	user := &entity.User{ID: uuid.New(), Email: "a@b.c", Role: entity.RoleCustomer}
	accessToken, err := otherService.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken(accessToken)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestJWTService_EmptySecret(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{}}

	jwtService, err := NewJWTService(cfg)
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt access secret must be provided")
}

func TestJWTService_GenerateRefreshToken(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(15 * time.Minute))
	require.NoError(t, err)

	raw, hash, err := jwtService.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, raw, hash)

	// Hash is deterministic for the same raw value.
	assert.Equal(t, hash, jwtService.HashToken(raw))

	// Two generations never collide.
	raw2, hash2, err := jwtService.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
	assert.NotEqual(t, hash, hash2)
}

func TestJWTService_GetRefreshTokenDuration(t *testing.T) {
	jwtService, err := NewJWTService(newTestConfig(15 * time.Minute))
	require.NoError(t, err)

	assert.Equal(t, time.Hour*24*7, jwtService.GetRefreshTokenDuration())
}
