package service

import (
	"context"
	"errors"
	"fmt"

	"schedulebot/internal/domain"
	"schedulebot/internal/repository"

	"go.uber.org/zap"
)

// UserService loads and mutates dialogue state records
type UserService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// EnsureUser returns the user record, creating the default one on first contact
func (s *UserService) EnsureUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.FindUser(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	s.logger.Info("New user", zap.Int64("user_id", userID))
	user, err = s.userRepo.InsertUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Update persists the patch and mirrors it on the in-memory user
func (s *UserService) Update(ctx context.Context, user *domain.User, patch domain.Patch) error {
	if len(patch) == 0 {
		return nil
	}
	if err := s.userRepo.UpdateUser(ctx, user.ID, patch); err != nil {
		return err
	}
	patch.Apply(user)
	return nil
}
