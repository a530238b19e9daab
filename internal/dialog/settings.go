package dialog

import (
	"context"

	"schedulebot/internal/domain"
	"schedulebot/internal/keyboard"

	"go.uber.org/zap"
)

func (e *Engine) sendSettingsMenu(ctx context.Context, user *domain.User, _ domain.Payload) (*domain.User, error) {
	if err := e.reply(ctx, user, textWhatToSet, keyboard.SettingsMenu(user)); err != nil {
		return nil, err
	}
	return user, nil
}

// showGroupsOrLocation flips one display setting. The keyboard sent back
// already reflects the new value.
func (e *Engine) showGroupsOrLocation(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error) {
	var (
		field domain.Field
		value bool
		text  string
	)
	switch payload.String(domain.PayloadType) {
	case domain.SettingGroups:
		field, value = domain.FieldShowGroups, !user.ShowGroups
		text = textGroupsHidden
		if value {
			text = textGroupsShown
		}
	case domain.SettingLocation:
		field, value = domain.FieldShowLocation, !user.ShowLocation
		text = textLocationHidden
		if value {
			text = textLocationShown
		}
	default:
		e.logger.Warn("Unknown setting", zap.Int64("user_id", user.ID), zap.Any("payload", payload))
		if err := e.reply(ctx, user, textUnknownSetting, keyboard.SettingsMenu(user)); err != nil {
			return nil, err
		}
		return user, nil
	}

	if err := e.update(ctx, user, domain.Patch{field: value}); err != nil {
		return nil, err
	}
	if err := e.reply(ctx, user, text, keyboard.SettingsMenu(user)); err != nil {
		return nil, err
	}
	return user, nil
}
