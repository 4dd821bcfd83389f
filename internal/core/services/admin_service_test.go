package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports/mocks"
	"github.com/srgjo27/urban_spark/internal/core/services"
)

func TestAdminLogin_Success(t *testing.T) {
	sessions := mocks.NewAdminSessionRepository(t)
	service := services.NewAdminService("1234", sessions, time.Hour, zap.NewNop())

	ctx := context.Background()
	sessions.On("Grant", ctx, mock.AnythingOfType("string"), time.Hour).Return(nil).Once()

	token, err := service.Login(ctx, "1234")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAdminLogin_WrongPIN(t *testing.T) {
	sessions := mocks.NewAdminSessionRepository(t)
	service := services.NewAdminService("1234", sessions, time.Hour, zap.NewNop())

	for _, pin := range []string{"", "0000", "12345", " 1234"} {
		_, err := service.Login(context.Background(), pin)
		assert.ErrorIs(t, err, domain.ErrInvalidPIN, pin)
	}
	sessions.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminLogin_NoPINConfigured(t *testing.T) {
	sessions := mocks.NewAdminSessionRepository(t)
	service := services.NewAdminService("", sessions, time.Hour, zap.NewNop())

	_, err := service.Login(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidPIN)
}

func TestAdminLogin_SessionStoreFailure(t *testing.T) {
	sessions := mocks.NewAdminSessionRepository(t)
	service := services.NewAdminService("1234", sessions, time.Hour, zap.NewNop())

	sessions.On("Grant", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	_, err := service.Login(context.Background(), "1234")

	assert.ErrorContains(t, err, "redis down")
}

func TestAdminAuthorized(t *testing.T) {
	sessions := mocks.NewAdminSessionRepository(t)
	service := services.NewAdminService("1234", sessions, time.Hour, zap.NewNop())

	ctx := context.Background()
	sessions.On("Valid", ctx, "good").Return(true, nil).Once()
	sessions.On("Valid", ctx, "stale").Return(false, nil).Once()

	ok, err := service.Authorized(ctx, "good")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.Authorized(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = service.Authorized(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminLogout(t *testing.T) {
	sessions := mocks.NewAdminSessionRepository(t)
	service := services.NewAdminService("1234", sessions, time.Hour, zap.NewNop())

	ctx := context.Background()
	sessions.On("Revoke", ctx, "tok").Return(nil).Once()

	assert.NoError(t, service.Logout(ctx, "tok"))
	assert.NoError(t, service.Logout(ctx, ""))
}
