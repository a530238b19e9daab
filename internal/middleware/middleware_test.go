package middleware

import (
	"testing"

	"schedulebot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func newContext(t *testing.T, chatType tele.ChatType) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return bot.NewContext(tele.Update{
		ID: 1,
		Message: &tele.Message{
			Chat:   &tele.Chat{ID: 42, Type: chatType},
			Sender: &tele.User{ID: 42},
			Text:   "start",
		},
	})
}

func TestRecover(t *testing.T) {
	h := Recover(testutil.NewTestLogger())(func(tele.Context) error {
		panic("boom")
	})

	var err error
	assert.NotPanics(t, func() {
		err = h(newContext(t, tele.ChatPrivate))
	})
	assert.EqualError(t, err, "panic: boom")
}

func TestPrivateOnly(t *testing.T) {
	tests := []struct {
		name       string
		chatType   tele.ChatType
		wantCalled bool
	}{
		{name: "private", chatType: tele.ChatPrivate, wantCalled: true},
		{name: "group", chatType: tele.ChatGroup, wantCalled: false},
		{name: "channel", chatType: tele.ChatChannel, wantCalled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := PrivateOnly(testutil.NewTestLogger())(func(tele.Context) error {
				called = true
				return nil
			})

			err := h(newContext(t, tt.chatType))

			assert.NoError(t, err)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	called := false
	h := Logger(testutil.NewTestLogger())(func(c tele.Context) error {
		called = true
		assert.Equal(t, "start", c.Text())
		return nil
	})

	assert.NoError(t, h(newContext(t, tele.ChatPrivate)))
	assert.True(t, called)
}
