package service

import (
	"time"

	"farmlink/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Token validation errors. The expired case is distinguished so the HTTP
// layer can return its dedicated message.
var (
	// ErrAccessTokenExpired is returned when an access token's expiry has passed.
	ErrAccessTokenExpired = errors.New("access token has expired")
	// ErrTokenInvalid is returned for any other token validation failure.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims defines the custom claims carried by access tokens.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateAccessToken creates a signed short-lived access token for the user.
	GenerateAccessToken(user *entity.User) (string, error)

	// ValidateAccessToken checks the validity of an access token string and
	// returns its claims. Returns ErrAccessTokenExpired or ErrTokenInvalid.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a new opaque refresh token, returning the
	// raw value handed to the client and the hash stored server-side.
	GenerateRefreshToken() (raw string, hash string, err error)

	// HashToken derives the storage hash for a raw refresh token.
	HashToken(raw string) string

	// GetRefreshTokenDuration returns the configured duration for refresh tokens.
	GetRefreshTokenDuration() time.Duration
}
