package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"schedulebot/internal/cache"
	"schedulebot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// callbackDataLimit is the largest callback data telegram accepts
const callbackDataLimit = 64

// stashPrefix marks callback data that holds a stash token instead of a payload
const stashPrefix = "#"

// errPayloadExpired is returned for a button whose stashed payload is gone
var errPayloadExpired = errors.New("button payload expired")

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// encodeCallbackData returns the callback data of a button. Payloads over
// the telegram limit are stashed and referenced by token.
func encodeCallbackData(ctx context.Context, stash cache.Stash, payload domain.Payload) (string, error) {
	data, err := payload.Encode()
	if err != nil {
		return "", err
	}
	if len(data) <= callbackDataLimit {
		return data, nil
	}

	token, err := stash.Put(ctx, data)
	if err != nil {
		return "", err
	}
	return stashPrefix + token, nil
}

// decodeCallbackData reverses encodeCallbackData
func decodeCallbackData(ctx context.Context, stash cache.Stash, data string) (domain.Payload, error) {
	data = cleanCallbackData(data)
	if token, ok := strings.CutPrefix(data, stashPrefix); ok {
		raw, err := stash.Get(ctx, token)
		if errors.Is(err, cache.ErrStashMiss) {
			return nil, errPayloadExpired
		}
		if err != nil {
			return nil, err
		}
		data = raw
	}
	payload, err := domain.ParsePayload(data)
	if err != nil {
		return nil, fmt.Errorf("callback %q: %w", data, err)
	}
	return payload, nil
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}
	userID := c.Sender().ID

	// Always acknowledge so the client stops the spinner
	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Int64("user_id", userID), zap.Error(err))
	}

	payload, err := h.resolveCallbackData(callback.Data)
	if err != nil {
		h.logger.Warn("Unreadable callback payload",
			zap.Int64("user_id", userID),
			zap.String("data", callback.Data),
			zap.Error(err),
		)
		payload = domain.Payload{domain.PayloadMenu: string(domain.ActionScheduleMenu)}
	}

	h.logger.Debug("Processing callback",
		zap.Int64("user_id", userID),
		zap.Any("payload", payload),
	)
	return h.submit(domain.Event{PeerID: userID, Payload: payload})
}
