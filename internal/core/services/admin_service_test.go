package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qboard/qboard/internal/core/domain"
	apperrors "github.com/qboard/qboard/internal/core/errors"
	"github.com/qboard/qboard/internal/core/mocks"
	"github.com/qboard/qboard/internal/core/services"
)

func TestAdminService_ListUsers(t *testing.T) {
	ctx := context.Background()

	mockRepo := mocks.NewMockUserRepository()
	mockAuthz := mocks.NewMockAuthorizationService()
	svc := services.NewAdminService(mockRepo, mockAuthz)

	expected := []*domain.User{{Username: "alice"}, {Username: "bob"}}
	mockRepo.On("List", ctx, int32(10), int32(0)).Return(expected, nil)

	users, err := svc.ListUsers(ctx, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, expected, users)
	mockAuthz.AssertNotCalled(t, "RequireAdmin")
}

func TestAdminService_SetAdmin(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	targetID := uuid.New()

	t.Run("admin promotes another user", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		svc := services.NewAdminService(mockRepo, mockAuthz)

		mockAuthz.On("RequireAdmin", ctx, adminID).Return(nil)
		mockRepo.On("SetAdmin", ctx, targetID, true).
			Return(&domain.User{ID: targetID, IsAdmin: true}, nil)

		user, err := svc.SetAdmin(ctx, adminID, targetID, true)

		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("admin revokes another admin", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		svc := services.NewAdminService(mockRepo, mockAuthz)

		mockAuthz.On("RequireAdmin", ctx, adminID).Return(nil)
		mockRepo.On("SetAdmin", ctx, targetID, false).
			Return(&domain.User{ID: targetID, IsAdmin: false}, nil)

		user, err := svc.SetAdmin(ctx, adminID, targetID, false)

		require.NoError(t, err)
		assert.False(t, user.IsAdmin)
	})

	t.Run("admin cannot revoke their own rights", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		svc := services.NewAdminService(mockRepo, mockAuthz)

		mockAuthz.On("RequireAdmin", ctx, adminID).Return(nil)

		user, err := svc.SetAdmin(ctx, adminID, adminID, false)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrCannotRevokeSelf)
		mockRepo.AssertNotCalled(t, "SetAdmin")
	})

	t.Run("admin may promote themselves idempotently", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		svc := services.NewAdminService(mockRepo, mockAuthz)

		mockAuthz.On("RequireAdmin", ctx, adminID).Return(nil)
		mockRepo.On("SetAdmin", ctx, adminID, true).
			Return(&domain.User{ID: adminID, IsAdmin: true}, nil)

		user, err := svc.SetAdmin(ctx, adminID, adminID, true)

		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("non-admin actor is forbidden", func(t *testing.T) {
		mockRepo := mocks.NewMockUserRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		svc := services.NewAdminService(mockRepo, mockAuthz)

		userID := uuid.New()
		mockAuthz.On("RequireAdmin", ctx, userID).Return(apperrors.ErrForbidden)

		user, err := svc.SetAdmin(ctx, userID, targetID, true)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockRepo.AssertNotCalled(t, "SetAdmin")
	})
}
