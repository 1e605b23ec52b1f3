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

// deviceService implements the DeviceUsecase interface.
type deviceService struct {
	deviceRepo repository.DeviceRepository
	logger     *slog.Logger
}

// NewDeviceService creates a new device service instance
func NewDeviceService(deviceRepo repository.DeviceRepository, logger *slog.Logger) usecase.DeviceUsecase {
	return &deviceService{
		deviceRepo: deviceRepo,
		logger:     logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *deviceService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterDevice registers a new device or refreshes an existing one.
// Re-registering a known FCM token is an upsert, not an error.
func (srv *deviceService) RegisterDevice(ctx context.Context, userID uuid.UUID, deviceInfo *usecase.DeviceInfo) (*entity.UserDevice, error) {
	if deviceInfo.FCMToken == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidArgument.WrapMessage("fcm token is required"), "device registration rejected")
	}

	device := &entity.UserDevice{
		UserID:   userID,
		FCMToken: deviceInfo.FCMToken,
		Platform: deviceInfo.Platform,
		IsActive: true,
	}

	if err := srv.deviceRepo.UpsertDevice(ctx, device); err != nil {
		srv.log(ctx).Error("Failed to register device", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to register device")
	}

	srv.log(ctx).Debug("Device registered", slog.Any("userID", userID), slog.Any("deviceID", device.ID))

	return device, nil
}

// GetUserDevices retrieves all active devices for a user.
func (srv *deviceService) GetUserDevices(ctx context.Context, userID uuid.UUID) ([]*entity.UserDevice, error) {
	devices, err := srv.deviceRepo.FindActiveDevicesByUser(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to list user devices", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list user devices")
	}

	return devices, nil
}

// UnregisterDevice removes a device owned by the user.
func (srv *deviceService) UnregisterDevice(ctx context.Context, userID, deviceID uuid.UUID) error {
	device, err := srv.deviceRepo.FindDeviceByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			return errors.Wrap(domainerrors.ErrEntityNotFound.WrapMessage("device not found"), "device lookup failed")
		}

		return errors.Wrap(err, "failed to find device")
	}

	if device.UserID != userID {
		srv.log(ctx).Warn("Device unregistration rejected", slog.Any("userID", userID), slog.Any("deviceID", deviceID))

		return errors.Wrap(domainerrors.ErrAccessDenied, "device does not belong to user")
	}

	if err := srv.deviceRepo.DeleteDevice(ctx, deviceID); err != nil {
		return errors.Wrap(err, "failed to delete device")
	}

	srv.log(ctx).Debug("Device unregistered", slog.Any("userID", userID), slog.Any("deviceID", deviceID))

	return nil
}
