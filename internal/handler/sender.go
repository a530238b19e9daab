package handler

import (
	"context"
	"errors"
	"fmt"

	"schedulebot/internal/cache"
	"schedulebot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// messenger is the part of *tele.Bot the sender needs
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// unreachableErrors mean the user can no longer receive messages from the bot
var unreachableErrors = []error{
	tele.ErrBlockedByUser,
	tele.ErrUserIsDeactivated,
	tele.ErrChatNotFound,
}

// Sender delivers dialogue messages through telegram
type Sender struct {
	bot    messenger
	stash  cache.Stash
	logger *zap.Logger
}

// NewSender creates a telegram sender
func NewSender(bot messenger, stash cache.Stash, logger *zap.Logger) *Sender {
	return &Sender{
		bot:    bot,
		stash:  stash,
		logger: logger,
	}
}

// Send sends one message to a user
func (s *Sender) Send(ctx context.Context, peerID int64, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	markup, err := s.markup(ctx, msg.Keyboard)
	if err != nil {
		return fmt.Errorf("build keyboard: %w", err)
	}

	opts := &tele.SendOptions{
		ReplyMarkup:           markup,
		DisableWebPagePreview: !msg.LinkPreview,
	}
	if _, err := s.bot.Send(tele.ChatID(peerID), msg.Text, opts); err != nil {
		for _, target := range unreachableErrors {
			if errors.Is(err, target) {
				return fmt.Errorf("%w: %v", domain.ErrPeerUnreachable, err)
			}
		}
		return err
	}
	return nil
}

// markup renders a keyboard descriptor into telegram markup
func (s *Sender) markup(ctx context.Context, kb *domain.Keyboard) (*tele.ReplyMarkup, error) {
	if kb == nil {
		return nil, nil
	}

	markup := &tele.ReplyMarkup{}
	switch kb.Kind {
	case domain.KeyboardRemove:
		markup.RemoveKeyboard = true

	case domain.KeyboardReply:
		rows := make([]tele.Row, 0, len(kb.Rows))
		for _, r := range kb.Rows {
			row := make(tele.Row, 0, len(r))
			for _, b := range r {
				row = append(row, tele.Btn{Text: b.Label})
			}
			rows = append(rows, row)
		}
		markup.ResizeKeyboard = true
		markup.OneTimeKeyboard = true
		markup.Reply(rows...)

	default:
		rows := make([]tele.Row, 0, len(kb.Rows))
		for _, r := range kb.Rows {
			row := make(tele.Row, 0, len(r))
			for _, b := range r {
				data, err := encodeCallbackData(ctx, s.stash, b.Payload)
				if err != nil {
					return nil, err
				}
				row = append(row, tele.Btn{Text: b.Label, Data: data})
			}
			rows = append(rows, row)
		}
		markup.Inline(rows...)
	}
	return markup, nil
}
