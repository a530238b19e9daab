package dialog

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"schedulebot/internal/domain"
	"schedulebot/internal/keyboard"
	"schedulebot/internal/schedule"

	"go.uber.org/zap"
)

// sendScheduleMenu shows the main menu, or starts onboarding when
// the user has no usable group or teacher yet
func (e *Engine) sendScheduleMenu(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if !user.HasSchedule() {
		return e.sendChoiceGroup(ctx, user, nil)
	}
	if err := e.reply(ctx, user, textChooseMenu, keyboard.ScheduleMenu(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// sendChoiceGroup opens the group prompt and asks for the role first
func (e *Engine) sendChoiceGroup(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	patch := user.ReleasePrompts(domain.PromptGroup).Merge(domain.Patch{
		domain.FieldCurrentPhase: domain.PhaseAwaiting,
		domain.FieldRole:         domain.RoleNone,
	})
	if err := e.update(ctx, user, patch); err != nil {
		return nil, err
	}
	return e.changeRole(ctx, user, nil)
}

func (e *Engine) changeRole(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if err := e.reply(ctx, user, textWelcome, keyboard.ChooseRole()); err != nil {
		return nil, err
	}
	return user, nil
}

// setRole stores the chosen role and asks for the group or teacher name
func (e *Engine) setRole(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	role := domain.Role(payload.String(domain.PayloadRole))
	if !role.Valid() {
		e.logger.Warn("Unknown role", zap.Int64("user_id", user.ID), zap.Any("payload", payload))
		return e.changeRole(ctx, user, nil)
	}

	patch := user.ReleasePrompts(domain.PromptGroup).Merge(domain.Patch{
		domain.FieldCurrentPhase: domain.PhaseAwaiting,
		domain.FieldRole:         role,
	})
	if err := e.update(ctx, user, patch); err != nil {
		return nil, err
	}

	text := textGroupExample
	if role == domain.RoleTeacher {
		text = textTeacherExample
	}
	if err := e.reply(ctx, user, text, keyboard.BackToChoosingRole()); err != nil {
		return nil, err
	}
	return user, nil
}

// sendCheckGroup resolves the typed group name and makes it the user's group
func (e *Engine) sendCheckGroup(ctx context.Context, user *domain.User, text string) (*domain.User, error) {
	name := schedule.NormalizeGroupName(text)

	id, err := e.directory.ResolveGroup(ctx, name)
	if err == nil {
		err = e.update(ctx, user, domain.Patch{
			domain.FieldCurrentPhase: domain.PhaseSet,
			domain.FieldCurrentName:  name,
			domain.FieldCurrentID:    id,
			domain.FieldShowGroups:   false,
			domain.FieldShowLocation: false,
		})
		if err != nil {
			return nil, err
		}
		if err := e.reply(ctx, user, fmt.Sprintf(textGroupChangedFor, name), keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return user, nil
	}

	e.logger.Warn("Error setting group",
		zap.Int64("user_id", user.ID),
		zap.String("group", name),
		zap.Error(err),
	)
	// The prompt stays open so the next message is another attempt
	if err := e.update(ctx, user, domain.Patch{domain.FieldCurrentPhase: domain.PhaseAwaiting}); err != nil {
		return nil, err
	}

	if errors.Is(err, schedule.ErrNotFound) {
		if err := e.reply(ctx, user, fmt.Sprintf(textGroupNotFound, name), keyboard.BackToChoosingRole()); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err := e.reply(ctx, user, textTimeoutError, keyboard.BackToChoosingRole()); err != nil {
		return nil, err
	}
	return nil, nil
}

// searchTeacherToSet looks up the typed name to become the user's own teacher
func (e *Engine) searchTeacherToSet(ctx context.Context, user *domain.User, text string) (*domain.User, error) {
	teachers, err := e.directory.ResolveTeacher(ctx, text)
	switch {
	case err != nil:
		e.logger.Warn("Error searching teacher", zap.Int64("user_id", user.ID), zap.String("teacher", text), zap.Error(err))
		if err := e.reply(ctx, user, textTimeoutError, keyboard.BackToChoosingRole()); err != nil {
			return nil, err
		}
		return nil, nil

	case len(teachers) == 0:
		if err := e.reply(ctx, user, textTeacherNotFound, keyboard.BackToChoosingRole()); err != nil {
			return nil, err
		}
		return nil, nil

	case len(teachers) == 1:
		return e.setOwnTeacher(ctx, user, teachers[0])

	default:
		if err := e.reply(ctx, user, textChooseCurrentTeacher, keyboard.FoundList(teachers, true)); err != nil {
			return nil, err
		}
		return user, nil
	}
}

// setTeacher completes the teacher choice made from a found list
func (e *Engine) setTeacher(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	teacher := schedule.Teacher{
		ID:   payload.String(domain.PayloadFoundID),
		Name: payload.String(domain.PayloadFoundName),
	}
	if teacher.ID == "" || teacher.Name == "" {
		if err := e.reply(ctx, user, textCantFindUser, keyboard.BackToChoosingRole()); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return e.setOwnTeacher(ctx, user, teacher)
}

func (e *Engine) setOwnTeacher(ctx context.Context, user *domain.User, teacher schedule.Teacher) (*domain.User, error) {
	err := e.update(ctx, user, domain.Patch{
		domain.FieldRole:         domain.RoleTeacher,
		domain.FieldCurrentPhase: domain.PhaseSet,
		domain.FieldCurrentName:  teacher.Name,
		domain.FieldCurrentID:    teacher.ID,
		domain.FieldShowGroups:   true,
		domain.FieldShowLocation: true,
	})
	if err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, fmt.Sprintf(textFoundTeacher, teacher.Name), keyboard.ScheduleMenu(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// cancel closes every open prompt and returns to the menu
func (e *Engine) cancel(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	patch := user.ReleasePrompts(domain.PromptNone)
	if user.Found.Phase != domain.PhaseUnset {
		patch.Merge(domain.ClearFound())
	}
	if user.Subscription.Phase == domain.SubscriptionAwaitingDays {
		patch.Merge(domain.ClearSubscription())
	}
	if err := e.update(ctx, user, patch); err != nil {
		return nil, err
	}
	return e.sendScheduleMenu(ctx, user, nil)
}

func (e *Engine) choseCalendar(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if err := e.send(ctx, user, domain.Message{Text: textCalendarStub}); err != nil {
		return nil, err
	}
	return user, nil
}

// calendarLink sends the schedule portal link of the user's group or teacher
func (e *Engine) calendarLink(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if !user.HasSchedule() {
		return e.sendChoiceGroup(ctx, user, nil)
	}

	query := url.Values{}
	query.Set("name", user.Current.Name)
	query.Set("type", schedule.SubjectType(user.Role))
	query.Set("id", user.Current.ID)

	e.logger.Info("Calendar requested", zap.Int64("user_id", user.ID), zap.String("group", user.Current.Name))
	msg := domain.Message{Text: e.calendarURL + "?" + query.Encode(), LinkPreview: true}
	if err := e.send(ctx, user, msg); err != nil {
		return nil, err
	}
	return user, nil
}

func (e *Engine) debugMessage(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if err := e.send(ctx, user, domain.Message{Text: user.String()}); err != nil {
		return nil, err
	}
	return user, nil
}
