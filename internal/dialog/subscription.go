package dialog

import (
	"context"
	"fmt"

	"schedulebot/internal/domain"
	"schedulebot/internal/keyboard"

	"go.uber.org/zap"
)

func (e *Engine) unsubscribeSchedule(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if err := e.update(ctx, user, domain.ClearSubscription()); err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, textUnsubscribed, keyboard.ScheduleMenu(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// subscribeSchedule starts the subscription chain: time, then days
func (e *Engine) subscribeSchedule(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if !user.HasSchedule() {
		return e.sendChoiceGroup(ctx, user, nil)
	}

	patch := user.ReleasePrompts(domain.PromptSubscriptionTime).Merge(domain.Patch{
		domain.FieldSubscriptionPhase: domain.SubscriptionAwaitingTime,
		domain.FieldSubscriptionTime:  "",
		domain.FieldSubscriptionGroup: "",
		domain.FieldSubscriptionDays:  domain.DaysNone,
	})
	if err := e.update(ctx, user, patch); err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, textSubscribeWriteTime, keyboard.SubscribeStart()); err != nil {
		return nil, err
	}
	return user, nil
}

// updateSubscribeTime answers the time prompt. A bad time rolls the chain back.
func (e *Engine) updateSubscribeTime(ctx context.Context, user *domain.User, text string) (*domain.User, error) {
	clock, err := domain.ParseClock(text)
	if err != nil {
		if err := e.update(ctx, user, domain.ClearSubscription()); err != nil {
			return nil, err
		}
		if err := e.reply(ctx, user, textIncorrectTime, keyboard.Empty()); err != nil {
			return nil, err
		}
		if err := e.reply(ctx, user, textChooseMenu, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	err = e.update(ctx, user, domain.Patch{
		domain.FieldSubscriptionPhase: domain.SubscriptionAwaitingDays,
		domain.FieldSubscriptionTime:  clock,
		domain.FieldSubscriptionGroup: user.Current.Name,
	})
	if err != nil {
		return nil, err
	}

	kind := "группы"
	if user.Role == domain.RoleTeacher {
		kind = "преподавателя"
	}
	msg := fmt.Sprintf(textSubscribeTimeSet, kind, user.Current.Name, clock)
	if err := e.reply(ctx, user, msg, keyboard.Empty()); err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, textSubscribeChooseDays, keyboard.SubscribeDays()); err != nil {
		return nil, err
	}
	return user, nil
}

// updateSubscribeDay completes the chain. Anything out of order rolls it back.
func (e *Engine) updateSubscribeDay(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	days, ok := domain.ParseSubscriptionDays(payload.String(domain.PayloadType))
	phase := user.Subscription.Phase
	ready := user.Subscription.Time != "" &&
		(phase == domain.SubscriptionAwaitingDays || phase == domain.SubscriptionActive)

	if !ok || !ready {
		e.logger.Warn("Subscription chain broken",
			zap.Int64("user_id", user.ID),
			zap.Stringer("phase", phase),
			zap.Any("payload", payload),
		)
		if err := e.update(ctx, user, domain.ClearSubscription()); err != nil {
			return nil, err
		}
		if err := e.reply(ctx, user, textSubscribeFailed, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	err := e.update(ctx, user, domain.Patch{
		domain.FieldSubscriptionPhase: domain.SubscriptionActive,
		domain.FieldSubscriptionDays:  days,
	})
	if err != nil {
		return nil, err
	}

	kind := "группы"
	if user.Role == domain.RoleTeacher {
		kind = "преподавателя"
	}
	sub := user.Subscription
	msg := fmt.Sprintf(textSubscribed, kind, sub.Group, sub.Time, days.Describe())
	if err := e.reply(ctx, user, msg, keyboard.ScheduleMenu(user)); err != nil {
		return nil, err
	}
	e.logger.Info("User subscribed",
		zap.Int64("user_id", user.ID),
		zap.String("time", sub.Time),
		zap.String("days", string(days)),
	)
	return user, nil
}
