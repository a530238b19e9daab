package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"schedulebot/internal/domain"
	"schedulebot/internal/schedule"
	"schedulebot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func subscribed(user *domain.User, at string, days domain.SubscriptionDays) domain.User {
	user.Subscription = domain.Subscription{
		Phase: domain.SubscriptionActive,
		Time:  at,
		Group: user.Current.Name,
		Days:  days,
	}
	return *user
}

func TestSubscriptionService_DeliverDue(t *testing.T) {
	// Friday
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	student := subscribed(testutil.NewTestStudent(1, "ПИ21-1", "100"), "08:00", domain.DaysTomorrow)
	teacher := subscribed(testutil.NewTestTeacher(2, "Иванов И.И.", "555"), "08:00", domain.DaysNextWeek)

	mockRepo := new(testutil.MockUserRepository)
	mockRepo.On("ListSubscribers", mock.Anything, "08:00").Return([]domain.User{student, teacher}, nil)

	mockResolver := new(testutil.MockResolver)
	mockResolver.On("FormatSchedule", mock.Anything, schedule.Query{
		SubjectID: "100",
		Role:      domain.RoleStudent,
		Start:     time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
		Days:      1,
	}).Return("student schedule", nil)
	mockResolver.On("FormatSchedule", mock.Anything, schedule.Query{
		SubjectID: "555",
		Role:      domain.RoleTeacher,
		Start:     time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		Days:      7,
		Prefs:     schedule.Prefs{ShowGroups: true, ShowLocation: true},
	}).Return("teacher schedule", nil)

	mockSender := new(testutil.MockSender)
	mockSender.On("Send", mock.Anything, int64(1), mock.MatchedBy(func(m domain.Message) bool {
		return strings.HasPrefix(m.Text, "Расписание на завтра") && strings.HasSuffix(m.Text, "student schedule")
	})).Return(nil).Once()
	mockSender.On("Send", mock.Anything, int64(2), mock.MatchedBy(func(m domain.Message) bool {
		return strings.Contains(m.Text, "следующую неделю")
	})).Return(nil).Once()

	service := NewSubscriptionService(mockRepo, mockResolver, mockSender, testutil.NewTestLogger())

	err := service.DeliverDue(context.Background(), now)

	assert.NoError(t, err)
	mockResolver.AssertExpectations(t)
	mockSender.AssertExpectations(t)
}

func TestSubscriptionService_DeliverDue_Unreachable(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	user := subscribed(testutil.NewTestStudent(1, "ПИ21-1", "100"), "08:00", domain.DaysToday)

	mockRepo := new(testutil.MockUserRepository)
	mockRepo.On("ListSubscribers", mock.Anything, "08:00").Return([]domain.User{user}, nil)
	mockRepo.On("UpdateUser", mock.Anything, int64(1), domain.ClearSubscription()).Return(nil)

	mockResolver := new(testutil.MockResolver)
	mockResolver.On("FormatSchedule", mock.Anything, mock.Anything).Return("schedule", nil)

	mockSender := new(testutil.MockSender)
	mockSender.On("Send", mock.Anything, int64(1), mock.Anything).Return(domain.ErrPeerUnreachable)

	service := NewSubscriptionService(mockRepo, mockResolver, mockSender, testutil.NewTestLogger())

	err := service.DeliverDue(context.Background(), now)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestSubscriptionService_DeliverDue_ResolverFailureContinues(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	first := subscribed(testutil.NewTestStudent(1, "ПИ21-1", "100"), "08:00", domain.DaysToday)
	second := subscribed(testutil.NewTestStudent(2, "ПИ21-2", "101"), "08:00", domain.DaysToday)

	mockRepo := new(testutil.MockUserRepository)
	mockRepo.On("ListSubscribers", mock.Anything, "08:00").Return([]domain.User{first, second}, nil)

	mockResolver := new(testutil.MockResolver)
	mockResolver.On("FormatSchedule", mock.Anything, mock.MatchedBy(func(q schedule.Query) bool { return q.SubjectID == "100" })).
		Return("", schedule.ErrTimeout)
	mockResolver.On("FormatSchedule", mock.Anything, mock.MatchedBy(func(q schedule.Query) bool { return q.SubjectID == "101" })).
		Return("schedule", nil)

	mockSender := new(testutil.MockSender)
	mockSender.On("Send", mock.Anything, int64(2), mock.Anything).Return(nil).Once()

	service := NewSubscriptionService(mockRepo, mockResolver, mockSender, testutil.NewTestLogger())

	err := service.DeliverDue(context.Background(), now)

	assert.NoError(t, err)
	mockSender.AssertExpectations(t)
	mockSender.AssertNotCalled(t, "Send", mock.Anything, int64(1), mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscriptionService_DeliverDue_ListFails(t *testing.T) {
	mockRepo := new(testutil.MockUserRepository)
	mockRepo.On("ListSubscribers", mock.Anything, "09:30").Return(nil, errors.New("connection refused"))

	service := NewSubscriptionService(mockRepo, new(testutil.MockResolver), new(testutil.MockSender), testutil.NewTestLogger())

	err := service.DeliverDue(context.Background(), time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC))

	assert.Error(t, err)
}
