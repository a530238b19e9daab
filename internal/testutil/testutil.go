package testutil

import (
	"schedulebot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestStudent creates a student with a confirmed group
func NewTestStudent(userID int64, group, groupID string) *domain.User {
	u := domain.NewUser(userID)
	u.Role = domain.RoleStudent
	u.Current = domain.Selection{Phase: domain.PhaseSet, Name: group, ID: groupID}
	return u
}

// NewTestTeacher creates a teacher with a confirmed own schedule
func NewTestTeacher(userID int64, name, teacherID string) *domain.User {
	u := domain.NewUser(userID)
	u.Role = domain.RoleTeacher
	u.Current = domain.Selection{Phase: domain.PhaseSet, Name: name, ID: teacherID}
	u.ShowGroups = true
	u.ShowLocation = true
	return u
}
