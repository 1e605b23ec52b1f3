// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/delivery/http/response"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		logger: logger,
	}
}

type registerCustomerRequest struct {
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8"`
	FirstName   string     `json:"firstName" validate:"required"`
	LastName    string     `json:"lastName" validate:"required"`
	PhoneNumber string     `json:"phoneNumber" validate:"required"`
	BirthDate   *time.Time `json:"birthDate"`
	Gender      string     `json:"gender"`
}

type registerFarmerRequest struct {
	Email        string     `json:"email" validate:"required,email"`
	Password     string     `json:"password" validate:"required,min=8"`
	FirstName    string     `json:"firstName" validate:"required"`
	LastName     string     `json:"lastName" validate:"required"`
	PhoneNumber  string     `json:"phoneNumber" validate:"required"`
	BirthDate    *time.Time `json:"birthDate"`
	Gender       string     `json:"gender"`
	FarmName     string     `json:"farmName" validate:"required"`
	FarmLocation string     `json:"farmLocation"`
	Bio          string     `json:"bio"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RegisterCustomer handles the customer registration request.
// The new account is logged in immediately and a token pair is returned.
func (h *AuthHandler) RegisterCustomer(c echo.Context) error {
	var req registerCustomerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	ctx := c.Request().Context()
	if _, err := h.uc.RegisterCustomer(ctx, &usecase.RegisterCustomerInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   req.BirthDate,
		Gender:      req.Gender,
	}); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(ctx, &usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusCreated, newTokenPairResponse(output))
}

// RegisterFarmer handles the farmer registration request.
// The new account is logged in immediately and a token pair is returned.
func (h *AuthHandler) RegisterFarmer(c echo.Context) error {
	var req registerFarmerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	ctx := c.Request().Context()
	if _, err := h.uc.RegisterFarmer(ctx, &usecase.RegisterFarmerInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		BirthDate:    req.BirthDate,
		Gender:       req.Gender,
		FarmName:     req.FarmName,
		FarmLocation: req.FarmLocation,
		Bio:          req.Bio,
	}); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(ctx, &usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusCreated, newTokenPairResponse(output))
}

// Login handles the user login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid login payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, newTokenPairResponse(output))
}

// RefreshToken handles the token refresh request, rotating the session.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid refresh token payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, newTokenPairResponse(output))
}

// Logout revokes the presented refresh token. Revoking an already revoked
// or unknown token succeeds all the same.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid logout payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Successfully logged out")
}

// LogoutAllDevices revokes every active session of the authenticated user.
func (h *AuthHandler) LogoutAllDevices(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	if err := h.uc.LogoutAllDevices(c.Request().Context(), identity.UserID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Logged out on all devices")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.JSON(c, http.StatusOK, map[string]string{"status": "ok"})
}
