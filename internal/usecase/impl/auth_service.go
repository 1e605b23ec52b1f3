// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterCustomer orchestrates the complete customer registration process.
func (srv *authService) RegisterCustomer(ctx context.Context, input *usecase.RegisterCustomerInput) (*usecase.RegisterOutput, error) {
	newUser := &entity.User{
		Email: input.Email,
		Role:  entity.RoleCustomer,
		Info: &entity.UserInfo{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			PhoneNumber: input.PhoneNumber,
			BirthDate:   input.BirthDate,
			Gender:      input.Gender,
		},
	}

	return srv.executeRegistration(ctx, newUser, input.Password)
}

// RegisterFarmer orchestrates the complete farmer registration process.
func (srv *authService) RegisterFarmer(ctx context.Context, input *usecase.RegisterFarmerInput) (*usecase.RegisterOutput, error) {
	newUser := &entity.User{
		Email: input.Email,
		Role:  entity.RoleFarmer,
		Info: &entity.UserInfo{
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			PhoneNumber: input.PhoneNumber,
			BirthDate:   input.BirthDate,
			Gender:      input.Gender,
		},
		Farmer: &entity.FarmerProfile{
			FarmName:     input.FarmName,
			FarmLocation: input.FarmLocation,
			Bio:          input.Bio,
		},
	}

	return srv.executeRegistration(ctx, newUser, input.Password)
}

func (srv *authService) executeRegistration(ctx context.Context, newUser *entity.User, password string) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.Any("role", newUser.Role), slog.String("email", newUser.Email))

	// 1. Hash password outside transaction (bcrypt is CPU-bound).
	hashedPassword, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("role", newUser.Role), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}
	newUser.PasswordHash = hashedPassword

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		// 2. Reject duplicate identifiers up front for precise error messages.
		// The unique constraints still back this up under concurrency.
		emailTaken, err := userRepo.ExistsByEmail(ctx, newUser.Email)
		if err != nil {
			return errors.Wrap(err, "failed to check email availability")
		}
		if emailTaken {
			return errors.Wrap(domainerrors.ErrEmailAlreadyExists, "registration rejected")
		}

		phoneTaken, err := userRepo.ExistsByPhoneNumber(ctx, newUser.Info.PhoneNumber)
		if err != nil {
			return errors.Wrap(err, "failed to check phone number availability")
		}
		if phoneTaken {
			return errors.Wrap(domainerrors.ErrPhoneAlreadyExists, "registration rejected")
		}

		// 3. Persist the account with its profile rows.
		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create user during registration")
		}

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Failed to execute registration transaction", slog.Any("role", newUser.Role), slog.String("email", newUser.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("role", newUser.Role), slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser}, nil
}

// Login orchestrates the user login process.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.TokenPairOutput, error) {
	srv.log(ctx).Debug("Starting user login", slog.String("email", input.Email))

	// 1. Load the account. An unknown email reports the same error as a
	// wrong password so the response never reveals which part failed.
	loggedInUser, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	// 2. Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, loggedInUser.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	// 3. Issue a fresh token pair and store the new session.
	pair, err := srv.issueTokenPair(ctx, srv.refreshTokenRepo, loggedInUser)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue tokens during login")
	}
	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", loggedInUser.ID))

	return pair, nil
}

// RefreshToken rotates the presented refresh token: the new pair is issued and
// the old token revoked in the same transaction, so a raw refresh token can be
// redeemed exactly once.
func (srv *authService) RefreshToken(ctx context.Context, rawRefreshToken string) (*usecase.TokenPairOutput, error) {
	srv.log(ctx).Info("Attempting to refresh token pair")

	tokenHash := srv.tokenService.HashToken(rawRefreshToken)

	var pair *usecase.TokenPairOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		refreshRepo := repoFactory.RefreshTokenRepo()

		// 1. Look up the presented token by its hash.
		presented, err := refreshRepo.FindRefreshTokenByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return errors.Wrap(domainerrors.ErrRefreshTokenNotFound, "refresh rejected")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		// 2. Reject unusable tokens. A revoked token showing up again is a
		// replay of an already rotated credential.
		if presented.Revoked {
			srv.log(ctx).Warn("Revoked refresh token presented", slog.Any("userID", presented.UserID), slog.Any("tokenID", presented.ID))

			return errors.Wrap(domainerrors.ErrRefreshTokenRevoked, "refresh rejected")
		}
		if !time.Now().Before(presented.ExpiresAt) {
			return errors.Wrap(domainerrors.ErrRefreshTokenExpired, "refresh rejected")
		}

		// 3. Load the account behind the session.
		user, err := userRepo.FindByID(ctx, presented.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to find user for refresh")
		}

		// 4. Revoke the presented token before storing its replacement.
		if err := refreshRepo.Revoke(ctx, presented.ID); err != nil {
			return errors.Wrap(err, "failed to revoke presented refresh token")
		}

		pair, err = srv.issueTokenPair(ctx, refreshRepo, user)
		if err != nil {
			return errors.Wrap(err, "failed to issue replacement tokens")
		}

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Failed to execute refresh token transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute refresh token transaction")
	}

	return pair, nil
}

// Logout revokes the session behind the presented refresh token.
// Revoking an unknown or already revoked token succeeds silently, so logout is idempotent.
func (srv *authService) Logout(ctx context.Context, rawRefreshToken string) error {
	srv.log(ctx).Info("Attempting to log out")

	tokenHash := srv.tokenService.HashToken(rawRefreshToken)

	// Single operation - use direct repository instance
	if err := srv.refreshTokenRepo.RevokeByHash(ctx, tokenHash); err != nil {
		srv.log(ctx).Error("Failed to revoke refresh token", slog.Any("error", err))

		return errors.Wrap(err, "failed to revoke refresh token")
	}
	srv.log(ctx).Info("Successfully logged out")

	return nil
}

// LogoutAllDevices revokes every active session of the user.
func (srv *authService) LogoutAllDevices(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Attempting to log out from all devices", slog.Any("userID", userID))

	// Single operation - use direct repository instance
	if err := srv.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to revoke all refresh tokens", slog.Any("error", err), slog.Any("userID", userID))

		return errors.Wrap(err, "failed to revoke all refresh tokens")
	}
	srv.log(ctx).Info("Successfully logged out from all devices", slog.Any("userID", userID))

	return nil
}

// issueTokenPair generates an access token plus a fresh refresh token and
// stores the refresh token's hash through the given repository instance.
func (srv *authService) issueTokenPair(ctx context.Context, refreshRepo repository.RefreshTokenRepository, user *entity.User) (*usecase.TokenPairOutput, error) {
	accessToken, err := srv.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	rawRefreshToken, refreshTokenHash, err := srv.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	newRefreshToken := &entity.RefreshToken{
		UserID:    user.ID,
		TokenHash: refreshTokenHash,
		ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}

	if err := refreshRepo.CreateRefreshToken(ctx, newRefreshToken); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	return &usecase.TokenPairOutput{
		AccessToken:  accessToken,
		RefreshToken: rawRefreshToken,
		User:         user,
	}, nil
}
