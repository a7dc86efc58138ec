package services

import (
	"context"
	"errors"

	"atw-marketplace/internal/adapters/persistence/models"
	"atw-marketplace/internal/adapters/persistence/repositories"
	"atw-marketplace/internal/core/domain"
	"atw-marketplace/internal/pkg/logger"
	"atw-marketplace/internal/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrCannotDeleteSelf is returned when an admin tries to remove their own account
var ErrCannotDeleteSelf = domain.Validation("cannot delete your own account")

// UserService handles admin user management
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List lists users with pagination
func (s *UserService) List(ctx context.Context, params *pagination.Params) (*pagination.Response, error) {
	users, total, err := s.userRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, domain.Internal("list users", err)
	}

	items := make([]*models.UserResponse, len(users))
	for i, u := range users {
		items[i] = u.ToResponse()
	}
	return pagination.NewResponse(items, params, total), nil
}

// Delete removes a user and their agent application
func (s *UserService) Delete(ctx context.Context, id, currentUserID uint) error {
	if id == currentUserID {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return domain.Internal("delete user", err)
	}

	logger.FromContext(ctx).Info("user deleted",
		zap.Uint("user_id", id),
		zap.Uint("by", currentUserID),
	)
	return nil
}
