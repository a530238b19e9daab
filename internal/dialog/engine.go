// Package dialog is the per-user dialogue state machine of the bot
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"schedulebot/internal/domain"
	"schedulebot/internal/schedule"

	"go.uber.org/zap"
)

// startKeywords reset the dialogue to the main menu
var startKeywords = map[string]struct{}{
	"начать": {},
	"start":  {},
	"сброс":  {},
	"/start": {},
}

const (
	calendarText = "📅"
	debugText    = "/debug"
)

// UserStore loads and mutates user records
type UserStore interface {
	EnsureUser(ctx context.Context, userID int64) (*domain.User, error)
	// Update persists the patch and mirrors it on user
	Update(ctx context.Context, user *domain.User, patch domain.Patch) error
}

// handlerFunc is a menu handler. A nil user means the flow was aborted
// and nothing should be chained after it.
type handlerFunc func(ctx context.Context, user *domain.User, payload domain.Payload) (*domain.User, error)

// Options configures an Engine
type Options struct {
	CalendarURL string
	Location    *time.Location
	Now         func() time.Time
}

// Engine classifies inbound events and runs the matching handler
type Engine struct {
	users       UserStore
	directory   schedule.Directory
	resolver    schedule.Resolver
	sender      domain.Sender
	calendarURL string
	location    *time.Location
	now         func() time.Time
	logger      *zap.Logger

	handlers map[domain.Action]handlerFunc
}

// NewEngine creates a new dialogue engine
func NewEngine(
	users UserStore,
	directory schedule.Directory,
	resolver schedule.Resolver,
	sender domain.Sender,
	opts Options,
	logger *zap.Logger,
) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	e := &Engine{
		users:       users,
		directory:   directory,
		resolver:    resolver,
		sender:      sender,
		calendarURL: opts.CalendarURL,
		location:    opts.Location,
		now:         opts.Now,
		logger:      logger,
	}
	e.handlers = e.actionTable()
	return e
}

// actionTable maps every menu action to its handler
func (e *Engine) actionTable() map[domain.Action]handlerFunc {
	return map[domain.Action]handlerFunc{
		domain.ActionScheduleMenu:    e.sendScheduleMenu,
		domain.ActionSchedule:        e.sendSchedule,
		domain.ActionOneDaySchedule:  e.sendOneDaySchedule,
		domain.ActionChoiceGroup:     e.sendChoiceGroup,
		domain.ActionSearch:          e.sendSearch,
		domain.ActionSearchTeacher:   e.sendSearchTeacher,
		domain.ActionSearchGroup:     e.searchGroup,
		domain.ActionSetTeacher:      e.setTeacher,
		domain.ActionTeacher:         e.sendTeacher,
		domain.ActionTeacherSchedule: e.sendTeacherSchedule,
		domain.ActionToggleSetting:   e.showGroupsOrLocation,
		domain.ActionSettingsMenu:    e.sendSettingsMenu,
		domain.ActionUnsubscribe:     e.unsubscribeSchedule,
		domain.ActionSubscribe:       e.subscribeSchedule,
		domain.ActionSubscribeDay:    e.updateSubscribeDay,
		domain.ActionCalendar:        e.choseCalendar,
		domain.ActionCalendarLink:    e.calendarLink,
		domain.ActionChangeRole:      e.changeRole,
		domain.ActionSetRole:         e.setRole,
		domain.ActionSearchMenu:      e.search,
		domain.ActionCancel:          e.cancel,
		domain.ActionDebug:           e.debugMessage,
	}
}

// Handle processes one inbound event of a user
func (e *Engine) Handle(ctx context.Context, ev domain.Event) error {
	user, err := e.users.EnsureUser(ctx, ev.PeerID)
	if err != nil {
		e.logger.Error("Failed to load user", zap.Int64("user_id", ev.PeerID), zap.Error(err))
		e.apologize(ctx, ev.PeerID)
		return fmt.Errorf("load user %d: %w", ev.PeerID, err)
	}

	if err := e.route(ctx, user, ev); err != nil {
		if !errors.Is(err, domain.ErrPeerUnreachable) {
			e.apologize(ctx, ev.PeerID)
		}
		return err
	}
	return nil
}

// route is the event classifier. Guards are checked in order and exactly one branch runs.
func (e *Engine) route(ctx context.Context, user *domain.User, ev domain.Event) error {
	text := strings.TrimSpace(ev.Text)

	if isStart(text) || ev.Payload.String(domain.PayloadCommand) == domain.CommandStart {
		_, err := e.sendScheduleMenu(ctx, user, ev.Payload)
		return err
	}

	if user.FlowVersion == domain.LegacyFlowVersion {
		_, err := e.reonboard(ctx, user)
		return err
	}

	if ev.Payload.Has(domain.PayloadMenu) {
		return e.dispatch(ctx, user, ev.Payload)
	}

	return e.handleText(ctx, user, text)
}

func isStart(text string) bool {
	_, ok := startKeywords[strings.ToLower(text)]
	return ok
}

// dispatch runs the handler of a payload menu action
func (e *Engine) dispatch(ctx context.Context, user *domain.User, payload domain.Payload) error {
	name := payload.String(domain.PayloadMenu)
	action, ok := domain.ParseAction(name)
	handler, found := e.handlers[action]
	if !ok || !found {
		e.logger.Warn("Unexpected payload",
			zap.Int64("user_id", user.ID),
			zap.String("menu", name),
			zap.Any("payload", payload),
		)
		_, err := e.sendScheduleMenu(ctx, user, nil)
		return err
	}

	e.logger.Debug("Menu action", zap.Int64("user_id", user.ID), zap.String("menu", name))
	_, err := handler(ctx, user, payload)
	return err
}

// handleText routes free text to the prompt that currently claims it
func (e *Engine) handleText(ctx context.Context, user *domain.User, text string) error {
	var err error
	switch user.PendingPrompt() {
	case domain.PromptGroup:
		switch user.Role {
		case domain.RoleStudent:
			_, err = e.sendCheckGroup(ctx, user, text)
		case domain.RoleTeacher:
			_, err = e.searchTeacherToSet(ctx, user, text)
		default:
			err = e.send(ctx, user, domain.Message{Text: textUseButtons})
		}
	case domain.PromptSearch:
		if user.FoundType == domain.RoleTeacher {
			_, err = e.searchTeacherSchedule(ctx, user, text)
		} else {
			_, err = e.searchCheckGroup(ctx, user, text)
		}
	case domain.PromptSubscriptionTime:
		_, err = e.updateSubscribeTime(ctx, user, text)
	case domain.PromptDate:
		_, err = e.sendDayScheduleText(ctx, user, text)
	default:
		switch text {
		case calendarText:
			_, err = e.choseCalendar(ctx, user, nil)
		case debugText:
			_, err = e.debugMessage(ctx, user, nil)
		default:
			_, err = e.sendScheduleMenu(ctx, user, nil)
		}
	}
	return err
}

// reonboard clears the selection of users created under the legacy flow
// and starts onboarding again
func (e *Engine) reonboard(ctx context.Context, user *domain.User) (*domain.User, error) {
	e.logger.Warn("Renew legacy user",
		zap.Int64("user_id", user.ID),
		zap.String("group", user.Current.Name),
	)

	err := e.update(ctx, user, domain.Patch{
		domain.FieldRole:         domain.RoleNone,
		domain.FieldCurrentPhase: domain.PhaseUnset,
		domain.FieldCurrentName:  "",
		domain.FieldCurrentID:    "",
		domain.FieldFlowVersion:  domain.CurrentFlowVersion,
	})
	if err != nil {
		return nil, err
	}
	return e.sendScheduleMenu(ctx, user, nil)
}

// send delivers msg in chunks. A user that blocked the bot loses the subscription.
func (e *Engine) send(ctx context.Context, user *domain.User, msg domain.Message) error {
	for _, part := range msg.Split() {
		err := e.sender.Send(ctx, user.ID, part)
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrPeerUnreachable) {
			e.logger.Info("User unreachable, dropping subscription", zap.Int64("user_id", user.ID))
			if err := e.users.Update(ctx, user, domain.ClearSubscription()); err != nil {
				e.logger.Error("Failed to drop subscription", zap.Int64("user_id", user.ID), zap.Error(err))
			}
		}
		return fmt.Errorf("send to %d: %w", user.ID, err)
	}
	return nil
}

// reply is send for a message with a keyboard
func (e *Engine) reply(ctx context.Context, user *domain.User, text string, kb *domain.Keyboard) error {
	return e.send(ctx, user, domain.Message{Text: text, Keyboard: kb})
}

func (e *Engine) apologize(ctx context.Context, peerID int64) {
	if err := e.sender.Send(ctx, peerID, domain.Message{Text: textStorageDown}); err != nil {
		e.logger.Warn("Failed to send apology", zap.Int64("user_id", peerID), zap.Error(err))
	}
}

// today returns the current time in the schedule timezone
func (e *Engine) today() time.Time {
	return e.now().In(e.location)
}

// update persists a patch, logging storage failures
func (e *Engine) update(ctx context.Context, user *domain.User, patch domain.Patch) error {
	if err := e.users.Update(ctx, user, patch); err != nil {
		e.logger.Error("Failed to update user",
			zap.Int64("user_id", user.ID),
			zap.Strings("fields", fieldNames(patch)),
			zap.Error(err),
		)
		return fmt.Errorf("update user %d: %w", user.ID, err)
	}
	return nil
}

func fieldNames(patch domain.Patch) []string {
	fields := patch.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}
