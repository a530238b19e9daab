// Package middleware holds telebot middlewares shared by all handlers
package middleware

import (
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Recover catches panics in handlers and prevents the poller from dying
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Panic recovered",
						zap.Int64("user_id", senderID(c)),
						zap.Any("panic", r),
						zap.Stack("stack"),
					)
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return next(c)
		}
	}
}

// PrivateOnly drops updates that do not come from a private chat
func PrivateOnly(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil || chat.Type != tele.ChatPrivate || c.Sender() == nil {
				logger.Debug("Ignoring non-private update", zap.Int64("user_id", senderID(c)))
				return nil
			}
			return next(c)
		}
	}
}

// Logger logs a single receipt line per update
func Logger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			fields := []zap.Field{
				zap.Int("update_id", c.Update().ID),
				zap.Int64("user_id", senderID(c)),
			}
			if cb := c.Callback(); cb != nil {
				fields = append(fields, zap.String("callback", cb.Data))
			} else if text := c.Text(); text != "" {
				fields = append(fields, zap.String("text", text))
			}
			logger.Debug("Update received", fields...)

			err := next(c)
			if err != nil {
				logger.Warn("Update failed", append(fields, zap.Error(err))...)
			}
			return err
		}
	}
}

func senderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return 0
}
