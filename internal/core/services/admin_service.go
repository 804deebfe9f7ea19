package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/qboard/qboard/internal/core/domain"
	apperrors "github.com/qboard/qboard/internal/core/errors"
	"github.com/qboard/qboard/internal/core/ports"
)

// AdminService implements user management operations.
type AdminService struct {
	userRepo ports.UserRepository
	authzSvc ports.AuthorizationService
}

var _ ports.AdminService = (*AdminService)(nil)

// NewAdminService creates a new admin service.
func NewAdminService(userRepo ports.UserRepository, authzSvc ports.AuthorizationService) ports.AdminService {
	return &AdminService{
		userRepo: userRepo,
		authzSvc: authzSvc,
	}
}

// ListUsers returns registered users. Callers are already authenticated
// by the HTTP layer; no admin rights are required to browse the list.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return s.userRepo.List(ctx, int32(limit), int32(offset))
}

// SetAdmin grants or revokes admin rights. Only admins may do this, and
// an admin cannot revoke their own rights.
func (s *AdminService) SetAdmin(ctx context.Context, actorID, userID uuid.UUID, isAdmin bool) (*domain.User, error) {
	if err := s.authzSvc.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if !isAdmin && actorID == userID {
		return nil, apperrors.ErrCannotRevokeSelf
	}

	return s.userRepo.SetAdmin(ctx, userID, isAdmin)
}
