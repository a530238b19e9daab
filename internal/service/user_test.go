package service

import (
	"context"
	"errors"
	"testing"

	"schedulebot/internal/domain"
	"schedulebot/internal/repository"
	"schedulebot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserService_EnsureUser(t *testing.T) {
	tests := []struct {
		name          string
		findUser      *domain.User
		findError     error
		insert        bool
		insertError   error
		expected      *domain.User
		expectedError bool
	}{
		{
			name:     "existing user",
			findUser: testutil.NewTestStudent(42, "ПИ21-1", "100"),
			expected: testutil.NewTestStudent(42, "ПИ21-1", "100"),
		},
		{
			name:      "new user",
			findError: repository.ErrUserNotFound,
			insert:    true,
			expected:  domain.NewUser(42),
		},
		{
			name:          "database down",
			findError:     errors.New("connection refused"),
			expectedError: true,
		},
		{
			name:          "insert fails",
			findError:     repository.ErrUserNotFound,
			insert:        true,
			insertError:   errors.New("connection refused"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockUserRepository)
			mockRepo.On("FindUser", mock.Anything, int64(42)).Return(tt.findUser, tt.findError)
			if tt.insert {
				var inserted *domain.User
				if tt.insertError == nil {
					inserted = domain.NewUser(42)
				}
				mockRepo.On("InsertUser", mock.Anything, int64(42)).Return(inserted, tt.insertError)
			}
			service := NewUserService(mockRepo, testutil.NewTestLogger())

			user, err := service.EnsureUser(context.Background(), 42)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, user)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Update(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	user := testutil.NewTestStudent(42, "ПИ21-1", "100")
	patch := domain.Patch{domain.FieldShowGroups: true}
	mockRepo.On("UpdateUser", mock.Anything, int64(42), patch).Return(nil)
	service := NewUserService(mockRepo, testutil.NewTestLogger())

	err := service.Update(context.Background(), user, patch)

	assert.NoError(t, err)
	assert.True(t, user.ShowGroups, "shadow must reflect the persisted value")
	mockRepo.AssertExpectations(t)
}

func TestUserService_Update_FailureLeavesShadow(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	user := testutil.NewTestStudent(42, "ПИ21-1", "100")
	mockRepo.On("UpdateUser", mock.Anything, int64(42), mock.Anything).Return(errors.New("connection refused"))
	service := NewUserService(mockRepo, testutil.NewTestLogger())

	err := service.Update(context.Background(), user, domain.Patch{domain.FieldShowGroups: true})

	assert.Error(t, err)
	assert.False(t, user.ShowGroups)
}

func TestUserService_Update_EmptyPatch(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	service := NewUserService(mockRepo, testutil.NewTestLogger())

	err := service.Update(context.Background(), domain.NewUser(1), domain.Patch{})

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}
