package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/delivery/http/response"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// DeviceHandler holds dependencies for device-related handlers.
type DeviceHandler struct {
	uc     usecase.DeviceUsecase
	logger *slog.Logger
}

// NewDeviceHandler is the constructor for DeviceHandler, injected by Fx.
func NewDeviceHandler(uc usecase.DeviceUsecase, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{
		uc:     uc,
		logger: logger,
	}
}

type registerDeviceRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

// RegisterDevice registers or refreshes a push notification device.
func (h *DeviceHandler) RegisterDevice(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	var req registerDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid device payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	device, err := h.uc.RegisterDevice(c.Request().Context(), identity.UserID, &usecase.DeviceInfo{
		FCMToken: req.FCMToken,
		Platform: req.Platform,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusCreated, newDeviceResponse(device))
}

// ListDevices returns the caller's active devices.
func (h *DeviceHandler) ListDevices(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	devices, err := h.uc.GetUserDevices(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := make([]*deviceResponse, 0, len(devices))
	for _, device := range devices {
		resp = append(resp, newDeviceResponse(device))
	}

	return response.JSON(c, http.StatusOK, resp)
}

// UnregisterDevice removes one of the caller's devices.
func (h *DeviceHandler) UnregisterDevice(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrInvalidArgument.WrapMessage("invalid device id")
	}

	if err := h.uc.UnregisterDevice(c.Request().Context(), identity.UserID, deviceID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
