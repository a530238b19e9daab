package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schedulebot/internal/domain"
	"schedulebot/internal/keyboard"
	"schedulebot/internal/repository"
	"schedulebot/internal/schedule"

	"go.uber.org/zap"
)

// SubscriptionService delivers recurring schedules to subscribed users
type SubscriptionService struct {
	userRepo repository.UserRepository
	resolver schedule.Resolver
	sender   domain.Sender
	logger   *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	userRepo repository.UserRepository,
	resolver schedule.Resolver,
	sender domain.Sender,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		userRepo: userRepo,
		resolver: resolver,
		sender:   sender,
		logger:   logger,
	}
}

// DeliverDue sends the schedule to every user subscribed at now's HH:MM.
// A failed delivery is logged and does not stop the others.
func (s *SubscriptionService) DeliverDue(ctx context.Context, now time.Time) error {
	at := now.Format("15:04")
	users, err := s.userRepo.ListSubscribers(ctx, at)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}
	if len(users) == 0 {
		return nil
	}

	s.logger.Info("Delivering subscriptions", zap.String("time", at), zap.Int("users", len(users)))

	delivered := 0
	for i := range users {
		if err := ctx.Err(); err != nil {
			return err
		}

		user := &users[i]
		err := s.deliver(ctx, user, now)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, domain.ErrPeerUnreachable):
			s.logger.Info("Subscriber unreachable, unsubscribing", zap.Int64("user_id", user.ID))
			if err := s.userRepo.UpdateUser(ctx, user.ID, domain.ClearSubscription()); err != nil {
				s.logger.Error("Failed to unsubscribe user", zap.Int64("user_id", user.ID), zap.Error(err))
			}
		default:
			s.logger.Warn("Failed to deliver subscription",
				zap.Int64("user_id", user.ID),
				zap.String("group", user.Subscription.Group),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Subscriptions delivered", zap.Int("delivered", delivered), zap.Int("total", len(users)))
	return nil
}

func (s *SubscriptionService) deliver(ctx context.Context, user *domain.User, now time.Time) error {
	if !user.HasSchedule() {
		return fmt.Errorf("user %d has no schedule selected", user.ID)
	}

	start, days := user.Subscription.Days.Range(now)
	text, err := s.resolver.FormatSchedule(ctx, schedule.Query{
		SubjectID: user.Current.ID,
		Role:      user.Role,
		Start:     domain.StartOfDay(now).AddDate(0, 0, start),
		Days:      days,
		Prefs: schedule.Prefs{
			ShowGroups:   user.ShowGroups,
			ShowLocation: user.ShowLocation,
		},
	})
	if err != nil {
		return fmt.Errorf("format schedule: %w", err)
	}
	if text == "" {
		return fmt.Errorf("empty schedule for %s", user.Current.Name)
	}

	msg := domain.Message{
		Text:     fmt.Sprintf("Расписание на %s\n\n%s", user.Subscription.Days.Describe(), text),
		Keyboard: keyboard.ScheduleMenu(user),
	}
	for _, part := range msg.Split() {
		if err := s.sender.Send(ctx, user.ID, part); err != nil {
			return err
		}
	}
	return nil
}
