package impl

import (
	"context"
	"testing"

	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeviceFixture() (*fakeStore, usecase.DeviceUsecase) {
	store := newFakeStore()
	srv := NewDeviceService(&fakeDeviceRepo{store: store}, testLogger())

	return store, srv
}

func TestDeviceService_RegisterDevice_Upserts(t *testing.T) {
	store, srv := newDeviceFixture()
	ctx := context.Background()
	userID := uuid.New()

	first, err := srv.RegisterDevice(ctx, userID, &usecase.DeviceInfo{FCMToken: "token-1", Platform: "android"})
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	// Re-registering the same token refreshes instead of duplicating.
	second, err := srv.RegisterDevice(ctx, userID, &usecase.DeviceInfo{FCMToken: "token-1", Platform: "ios"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ios", second.Platform)
	assert.Len(t, store.devices, 1)
}

func TestDeviceService_RegisterDevice_RequiresToken(t *testing.T) {
	_, srv := newDeviceFixture()

	_, err := srv.RegisterDevice(context.Background(), uuid.New(), &usecase.DeviceInfo{Platform: "web"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidArgument))
}

func TestDeviceService_GetUserDevices_ActiveOnly(t *testing.T) {
	store, srv := newDeviceFixture()
	ctx := context.Background()
	userID := uuid.New()

	kept, err := srv.RegisterDevice(ctx, userID, &usecase.DeviceInfo{FCMToken: "token-1", Platform: "android"})
	require.NoError(t, err)
	dropped, err := srv.RegisterDevice(ctx, userID, &usecase.DeviceInfo{FCMToken: "token-2", Platform: "ios"})
	require.NoError(t, err)
	store.devices[dropped.ID].IsActive = false

	devices, err := srv.GetUserDevices(ctx, userID)

	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, kept.ID, devices[0].ID)
}

func TestDeviceService_UnregisterDevice_OwnershipEnforced(t *testing.T) {
	store, srv := newDeviceFixture()
	ctx := context.Background()
	userID := uuid.New()

	device, err := srv.RegisterDevice(ctx, userID, &usecase.DeviceInfo{FCMToken: "token-1", Platform: "android"})
	require.NoError(t, err)

	err = srv.UnregisterDevice(ctx, uuid.New(), device.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccessDenied))

	require.NoError(t, srv.UnregisterDevice(ctx, userID, device.ID))
	assert.Empty(t, store.devices)

	err = srv.UnregisterDevice(ctx, userID, device.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEntityNotFound))
}
