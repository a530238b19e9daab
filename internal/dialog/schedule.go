package dialog

import (
	"context"
	"fmt"
	"time"

	"schedulebot/internal/domain"
	"schedulebot/internal/keyboard"
	"schedulebot/internal/schedule"

	"go.uber.org/zap"
)

// fetch renders the schedule of a subject starting startDay days from today.
// An empty text without error means the resolver had nothing to show.
func (e *Engine) fetch(ctx context.Context, subject domain.Selection, role domain.Role, startDay, days int, prefs schedule.Prefs) (string, error) {
	if days < 1 {
		days = 1
	}
	return e.resolver.FormatSchedule(ctx, schedule.Query{
		SubjectID: subject.ID,
		Role:      role,
		Start:     domain.StartOfDay(e.today()).AddDate(0, 0, startDay),
		Days:      days,
		Prefs:     prefs,
	})
}

func userPrefs(user *domain.User) schedule.Prefs {
	return schedule.Prefs{ShowGroups: user.ShowGroups, ShowLocation: user.ShowLocation}
}

// sendSchedule sends the user's own schedule for the range in the payload.
// Payloads from the inline date navigation carry an absolute date instead.
func (e *Engine) sendSchedule(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	if !user.HasSchedule() {
		return e.sendChoiceGroup(ctx, user, nil)
	}

	now := e.today()
	startDay := payload.Int(domain.PayloadStartDay, 0)
	days := payload.Int(domain.PayloadDays, 1)

	var inlineDate *time.Time
	if payload.Bool(domain.PayloadShowInlineDate) {
		date, err := time.ParseInLocation(domain.DateLayout, payload.String(domain.PayloadDate), e.location)
		if err != nil {
			e.logger.Warn("Bad inline date", zap.Int64("user_id", user.ID), zap.Any("payload", payload))
			return e.sendScheduleMenu(ctx, user, nil)
		}
		inlineDate = &date
		startDay = domain.DayOffset(date, now)
		days = 1
	} else {
		startDay = domain.ResolveStartDay(startDay, now)
	}

	text, err := e.fetch(ctx, user.Current, user.Role, startDay, days, userPrefs(user))
	if err != nil || text == "" {
		e.logger.Warn("Error getting schedule",
			zap.Int64("user_id", user.ID),
			zap.String("group", user.Current.Name),
			zap.Error(err),
		)
		if err := e.reply(ctx, user, textCantGetSchedule, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	kb := keyboard.ScheduleMenu(user)
	if inlineDate != nil {
		kb = keyboard.InlineDate(*inlineDate)
	}
	if err := e.reply(ctx, user, text, kb); err != nil {
		return nil, err
	}
	return user, nil
}

// sendOneDaySchedule opens the date prompt
func (e *Engine) sendOneDaySchedule(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	patch := user.ReleasePrompts(domain.PromptDate).Merge(domain.Patch{
		domain.FieldDatePhase: domain.PhaseAwaiting,
	})
	if err := e.update(ctx, user, patch); err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, textWriteDate, keyboard.Empty()); err != nil {
		return nil, err
	}
	return user, nil
}

// sendDayScheduleText answers the date prompt with the schedule of that day
func (e *Engine) sendDayScheduleText(ctx context.Context, user *domain.User, text string) (*domain.User, error) {
	if err := e.update(ctx, user, domain.Patch{domain.FieldDatePhase: domain.PhaseUnset}); err != nil {
		return nil, err
	}

	now := e.today()
	date, err := domain.ParseDate(text, now)
	if err != nil {
		if err := e.reply(ctx, user, textIncorrectDate, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return user, nil
	}

	rendered, err := e.fetch(ctx, user.Current, user.Role, domain.DayOffset(date, now), 1, userPrefs(user))
	if err != nil || rendered == "" {
		e.logger.Warn("Error getting schedule by date",
			zap.Int64("user_id", user.ID),
			zap.String("date", date.Format(domain.DateLayout)),
			zap.Error(err),
		)
		msg := fmt.Sprintf(textCantFindScheduleByDate, date.Format(domain.DateLayout))
		if err := e.reply(ctx, user, msg, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return user, nil
	}

	if err := e.reply(ctx, user, rendered, keyboard.InlineDate(date)); err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, textChooseMenu, keyboard.ScheduleMenu(user)); err != nil {
		return nil, err
	}
	return user, nil
}
