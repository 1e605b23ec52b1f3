// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterCustomerInput defines the data required to register a new customer account.
type RegisterCustomerInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	BirthDate   *time.Time
	Gender      string
}

// RegisterFarmerInput defines the data required to register a new farmer account.
type RegisterFarmerInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	PhoneNumber  string
	BirthDate    *time.Time
	Gender       string
	FarmName     string
	FarmLocation string
	Bio          string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// TokenPairOutput returns a freshly issued access and refresh token pair.
// Every successful login and every refresh rotation produces a new pair.
type TokenPairOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	RegisterCustomer(ctx context.Context, input *RegisterCustomerInput) (*RegisterOutput, error)
	RegisterFarmer(ctx context.Context, input *RegisterFarmerInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*TokenPairOutput, error)

	// RefreshToken redeems a raw refresh token for a new token pair. The
	// presented token is revoked in the same transaction that stores its
	// replacement, so each refresh token is redeemable exactly once.
	RefreshToken(ctx context.Context, rawRefreshToken string) (*TokenPairOutput, error)

	// Logout revokes the session behind the presented refresh token.
	// Logging out an already revoked or unknown token is not an error.
	Logout(ctx context.Context, rawRefreshToken string) error

	// LogoutAllDevices revokes every active session of the user.
	LogoutAllDevices(ctx context.Context, userID uuid.UUID) error
}
