package dialog

import (
	"context"
	"errors"
	"fmt"

	"schedulebot/internal/domain"
	"schedulebot/internal/keyboard"
	"schedulebot/internal/schedule"

	"go.uber.org/zap"
)

func (e *Engine) search(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if err := e.reply(ctx, user, textWhatToFind, keyboard.SearchMenu()); err != nil {
		return nil, err
	}
	return user, nil
}

// sendSearch opens the search prompt for a group or a teacher
func (e *Engine) sendSearch(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	var text string
	role := domain.Role(payload.String(domain.PayloadRole))
	switch role {
	case domain.RoleTeacher:
		text = textWriteTeacher
	case domain.RoleStudent:
		text = textWriteGroup
	default:
		e.logger.Warn("Unknown search role", zap.Int64("user_id", user.ID), zap.Any("payload", payload))
		return user, nil
	}

	patch := user.ReleasePrompts(domain.PromptSearch).Merge(domain.ClearFound()).Merge(domain.Patch{
		domain.FieldFoundPhase: domain.PhaseAwaiting,
		domain.FieldFoundType:  role,
	})
	if err := e.update(ctx, user, patch); err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, text, keyboard.Empty()); err != nil {
		return nil, err
	}
	return user, nil
}

// sendSearchTeacher is kept for buttons sent before the search menu existed
func (e *Engine) sendSearchTeacher(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	return e.sendSearch(ctx, user, withRole(payload, domain.RoleTeacher))
}

// searchGroup is kept for buttons sent before the search menu existed
func (e *Engine) searchGroup(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	return e.sendSearch(ctx, user, withRole(payload, domain.RoleStudent))
}

func withRole(payload domain.Payload, role domain.Role) domain.Payload {
	p := make(domain.Payload, len(payload)+1)
	for k, v := range payload {
		p[k] = v
	}
	p[domain.PayloadRole] = string(role)
	return p
}

// searchCheckGroup answers the group search prompt
func (e *Engine) searchCheckGroup(ctx context.Context, user *domain.User, text string) (*domain.User, error) {
	name := schedule.NormalizeGroupName(text)

	id, err := e.directory.ResolveGroup(ctx, name)
	if err == nil {
		err = e.update(ctx, user, domain.Patch{
			domain.FieldFoundPhase: domain.PhaseSet,
			domain.FieldFoundName:  name,
			domain.FieldFoundID:    id,
		})
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf(textGroupFound, name) + "\n" + textChooseTimedelta
		if err := e.reply(ctx, user, msg, keyboard.FindScheduleMenu()); err != nil {
			return nil, err
		}
		return user, nil
	}

	e.logger.Warn("Error searching group",
		zap.Int64("user_id", user.ID),
		zap.String("group", name),
		zap.Error(err),
	)
	if err := e.update(ctx, user, domain.ClearFound()); err != nil {
		return nil, err
	}

	if errors.Is(err, schedule.ErrNotFound) {
		if err := e.reply(ctx, user, fmt.Sprintf(textGroupNotFound, name), keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err := e.reply(ctx, user, textTimeoutError, keyboard.ScheduleMenu(user)); err != nil {
		return nil, err
	}
	return nil, nil
}

// searchTeacherSchedule answers the teacher search prompt.
// A single match is selected at once, several matches are offered as a list
// and nothing is selected until one of them is chosen.
func (e *Engine) searchTeacherSchedule(ctx context.Context, user *domain.User, text string) (*domain.User, error) {
	if err := e.send(ctx, user, domain.Message{Text: textSearchingTeacher}); err != nil {
		return nil, err
	}

	teachers, err := e.directory.ResolveTeacher(ctx, text)
	switch {
	case err != nil:
		e.logger.Warn("Error searching teacher",
			zap.Int64("user_id", user.ID),
			zap.String("teacher", text),
			zap.Error(err),
		)
		if err := e.reply(ctx, user, textTimeoutError, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return nil, nil

	case len(teachers) == 0:
		if err := e.update(ctx, user, domain.ClearFound()); err != nil {
			return nil, err
		}
		if err := e.reply(ctx, user, textTeacherNotFound, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return nil, nil

	case len(teachers) == 1:
		err := e.update(ctx, user, domain.Patch{
			domain.FieldFoundPhase: domain.PhaseSet,
			domain.FieldFoundID:    teachers[0].ID,
			domain.FieldFoundName:  teachers[0].Name,
		})
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf(textFoundTeacher, teachers[0].Name) + "\n" + textChooseTimedelta
		if err := e.reply(ctx, user, msg, keyboard.FindScheduleMenu()); err != nil {
			return nil, err
		}
		return user, nil

	default:
		if err := e.reply(ctx, user, textChooseCurrentTeacher, keyboard.FoundList(teachers, false)); err != nil {
			return nil, err
		}
		return user, nil
	}
}

// sendTeacher selects a teacher picked from a found list
func (e *Engine) sendTeacher(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	id := payload.String(domain.PayloadFoundID)
	name := payload.String(domain.PayloadFoundName)
	if id == "" || name == "" {
		if err := e.update(ctx, user, domain.ClearFound()); err != nil {
			return nil, err
		}
		if err := e.reply(ctx, user, textCantFindUser, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	err := e.update(ctx, user, domain.Patch{
		domain.FieldFoundPhase: domain.PhaseSet,
		domain.FieldFoundID:    id,
		domain.FieldFoundName:  name,
		domain.FieldFoundType:  domain.RoleTeacher,
	})
	if err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, textChooseTimedelta, keyboard.FindScheduleMenu()); err != nil {
		return nil, err
	}
	return user, nil
}

// sendTeacherSchedule sends the schedule found by a search and closes the search
func (e *Engine) sendTeacherSchedule(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	if user.Found.Phase != domain.PhaseSet || user.Found.ID == "" {
		if err := e.reply(ctx, user, textCantFindUser, keyboard.ScheduleMenu(user)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	found, role := user.Found, user.FoundType
	if !role.Valid() {
		role = domain.RoleTeacher
	}
	startDay := domain.ResolveStartDay(payload.Int(domain.PayloadStartDay, 0), e.today())
	days := payload.Int(domain.PayloadDays, 1)

	text, err := e.fetch(ctx, found, role, startDay, days, schedule.Prefs{ShowGroups: true, ShowLocation: true})
	if err != nil || text == "" {
		e.logger.Warn("Error getting found schedule",
			zap.Int64("user_id", user.ID),
			zap.String("teacher", found.Name),
			zap.Error(err),
		)
		text = textCantGetSchedule
	}

	if err := e.update(ctx, user, domain.ClearFound()); err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, text, keyboard.ScheduleMenu(user)); err != nil {
		return nil, err
	}
	return user, nil
}
