package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// openPrefixes lists the path prefixes that bypass token validation.
var openPrefixes = []string{
	"/auth/login",
	"/auth/register",
	"/auth/refresh-token",
	"/health",
	"/docs",
	"/ws",
}

// AuthMiddleware validates access tokens and attaches the caller's identity
// to the request. It acts as a gateway: requests without credentials pass
// through unauthenticated and are rejected later by RequireAuth or
// RequireRole where authentication matters.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, userRepo repository.UserRepository, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, userRepo: userRepo, logger: logger}
}

// Authenticate validates the bearer token when one is presented and stores
// the resulting identity in the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if isOpenPath(c.Request().URL.Path) {
			return next(c)
		}

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			// No credentials at all. The request proceeds unauthenticated.
			return next(c)
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return domainerrors.ErrTokenInvalid
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, service.ErrAccessTokenExpired) {
				return domainerrors.ErrAccessTokenExpired
			}

			return domainerrors.ErrTokenInvalid
		}

		// The token must still match a live account.
		user, err := m.userRepo.FindByID(c.Request().Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrTokenInvalid
			}

			return errors.WithStack(err)
		}
		if user.Email != claims.Email {
			return domainerrors.ErrTokenInvalid
		}

		deliverycontext.SetIdentity(c, &entity.Identity{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		})

		return next(c)
	}
}

// RequireAuth rejects requests that carry no authenticated identity.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if deliverycontext.GetIdentity(c) == nil {
			return domainerrors.ErrTokenInvalid
		}

		return next(c)
	}
}

// RequireRole is a middleware factory that checks if the caller has a specific role.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(requiredRole entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := deliverycontext.GetIdentity(c)
			if identity == nil {
				return domainerrors.ErrTokenInvalid
			}

			if identity.Role != requiredRole {
				return domainerrors.ErrAccessDenied
			}

			return next(c)
		}
	}
}

// isOpenPath reports whether the path is exempt from token validation.
// A deployment-level /api/v1 prefix is tolerated.
func isOpenPath(path string) bool {
	path = strings.TrimPrefix(path, "/api/v1")

	for _, prefix := range openPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
