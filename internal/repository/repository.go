package repository

import (
	"context"
	"errors"

	"schedulebot/internal/domain"
)

// ErrUserNotFound is returned when no record exists for the user id
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines user record operations
type UserRepository interface {
	FindUser(ctx context.Context, userID int64) (*domain.User, error)
	InsertUser(ctx context.Context, userID int64) (*domain.User, error)
	UpdateUser(ctx context.Context, userID int64, patch domain.Patch) error
	ListSubscribers(ctx context.Context, at string) ([]domain.User, error)
}
