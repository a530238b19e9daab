package handler

import (
	"context"
	"time"

	"schedulebot/internal/cache"
	"schedulebot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Submitter accepts inbound events for processing
type Submitter interface {
	Submit(ev domain.Event) error
}

// Handler turns telegram updates into dialogue events
type Handler struct {
	bot        *tele.Bot
	dispatcher Submitter
	stash      cache.Stash
	logger     *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	dispatcher Submitter,
	stash cache.Stash,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:        bot,
		dispatcher: dispatcher,
		stash:      stash,
		logger:     logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands are plain text for the dialogue
	h.bot.Handle("/start", h.handleText)
	h.bot.Handle("/debug", h.handleText)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// handleText submits a text message, including reply keyboard presses
func (h *Handler) handleText(c tele.Context) error {
	ev := domain.Event{
		PeerID:  c.Sender().ID,
		Text:    c.Text(),
		Payload: domain.Payload{},
	}
	return h.submit(ev)
}

func (h *Handler) submit(ev domain.Event) error {
	if err := h.dispatcher.Submit(ev); err != nil {
		h.logger.Warn("Failed to submit event", zap.Int64("user_id", ev.PeerID), zap.Error(err))
		return err
	}
	return nil
}

// lookupTimeout bounds stash reads done on the update goroutine
const lookupTimeout = 2 * time.Second

func (h *Handler) resolveCallbackData(data string) (domain.Payload, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	return decodeCallbackData(ctx, h.stash, data)
}
