package testutil

import (
	"context"

	"schedulebot/internal/domain"
	"schedulebot/internal/schedule"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) InsertUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, userID int64, patch domain.Patch) error {
	args := m.Called(ctx, userID, patch)
	return args.Error(0)
}

func (m *MockUserRepository) ListSubscribers(ctx context.Context, at string) ([]domain.User, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockDirectory is a mock for schedule.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ResolveGroup(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockDirectory) ResolveTeacher(ctx context.Context, name string) ([]schedule.Teacher, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.Teacher), args.Error(1)
}

// MockResolver is a mock for schedule.Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) FormatSchedule(ctx context.Context, q schedule.Query) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}

// MockSender is a mock for the outbound message transport
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, peerID int64, msg domain.Message) error {
	args := m.Called(ctx, peerID, msg)
	return args.Error(0)
}
