package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qboard/qboard/internal/auth"
	"github.com/qboard/qboard/internal/core/domain"
	apperrors "github.com/qboard/qboard/internal/core/errors"
	"github.com/qboard/qboard/internal/core/ports"
)

// IdentityService resolves optional bearer credentials and gates
// admin-only operations. The two concerns fail very differently:
// Resolve degrades every failure to anonymous, RequireAdmin rejects.
type IdentityService struct {
	tokenManager *auth.TokenManager
	userRepo     ports.UserRepository
	logger       *slog.Logger
}

var (
	_ ports.IdentityResolver     = (*IdentityService)(nil)
	_ ports.AuthorizationService = (*IdentityService)(nil)
)

// NewIdentityService creates a new identity service.
func NewIdentityService(tokenManager *auth.TokenManager, userRepo ports.UserRepository, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		tokenManager: tokenManager,
		userRepo:     userRepo,
		logger:       logger.With("component", "identity"),
	}
}

// Resolve maps an optional bearer credential to a user. Failure is the
// anonymous value: an empty, malformed, or expired credential, an
// unknown subject, and even a lookup error all yield nil. Creation
// paths must never be blocked by identity resolution.
func (s *IdentityService) Resolve(ctx context.Context, credential string) *domain.User {
	if credential == "" {
		return nil
	}

	claims, err := s.tokenManager.ValidateToken(credential)
	if err != nil {
		s.logger.Debug("credential did not resolve, treating as anonymous", "error", err)
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Warn("identity lookup failed, treating as anonymous", "error", err)
		}
		return nil
	}

	return user
}

// RequireAdmin returns nil iff the user exists and is an admin. Any
// other outcome is a hard ErrForbidden: gated mutations are rejected
// before persistence, never silently downgraded.
func (s *IdentityService) RequireAdmin(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrForbidden
		}
		return err
	}

	if !user.IsAdmin {
		return apperrors.ErrForbidden
	}

	return nil
}
