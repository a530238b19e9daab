package domain

import (
	"strings"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name           string
		length         int
		expectedChunks int
	}{
		{name: "empty", length: 0, expectedChunks: 0},
		{name: "short", length: 10, expectedChunks: 1},
		{name: "exactly the limit", length: MaxMessageLength, expectedChunks: 1},
		{name: "one over the limit", length: MaxMessageLength + 1, expectedChunks: 2},
		{name: "several chunks", length: 3*MaxMessageLength + 17, expectedChunks: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Cyrillic runes are two bytes each; the limit counts characters
			text := strings.Repeat("я", tt.length)

			chunks := SplitText(text, MaxMessageLength)

			assert.Len(t, chunks, tt.expectedChunks)
			for _, c := range chunks {
				assert.LessOrEqual(t, utf8.RuneCountInString(c), MaxMessageLength)
			}
			assert.Equal(t, text, strings.Join(chunks, ""))
		})
	}
}

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload(`{"menu":"send_schedule","start_day":-1,"days":7,"show_inline_date":true}`)
	assert.NoError(t, err)
	assert.Equal(t, "send_schedule", p.String(PayloadMenu))
	assert.Equal(t, -1, p.Int(PayloadStartDay, 0))
	assert.Equal(t, 7, p.Int(PayloadDays, 1))
	assert.Equal(t, 5, p.Int("missing", 5))
	assert.True(t, p.Bool(PayloadShowInlineDate))

	empty, err := ParsePayload("")
	assert.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParsePayload("{not json")
	assert.Error(t, err)
}

func TestPayload_StringFromNumber(t *testing.T) {
	p := Payload{PayloadFoundID: float64(12345)}
	assert.Equal(t, "12345", p.String(PayloadFoundID))
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction("send_teacher_schedule")
	assert.True(t, ok)
	assert.Equal(t, ActionTeacherSchedule, a)

	_, ok = ParseAction("drop_tables")
	assert.False(t, ok)
}

func TestMessage_Split(t *testing.T) {
	kb := &Keyboard{Kind: KeyboardInline, Rows: [][]Button{{{Label: "ok"}}}}
	msg := Message{Text: strings.Repeat("a", 2*MaxMessageLength+1), Keyboard: kb, LinkPreview: true}

	parts := msg.Split()

	assert.Len(t, parts, 3)
	assert.Nil(t, parts[0].Keyboard)
	assert.Nil(t, parts[1].Keyboard)
	assert.Equal(t, kb, parts[2].Keyboard)
	for _, p := range parts {
		assert.True(t, p.LinkPreview)
	}

	short := Message{Text: "hi", Keyboard: kb}.Split()
	assert.Equal(t, []Message{{Text: "hi", Keyboard: kb}}, short)

	assert.Empty(t, Message{Keyboard: kb}.Split())
}

func TestSplitText_CountsUTF16Units(t *testing.T) {
	// Each emoji takes two UTF-16 units
	text := strings.Repeat("📅", MaxMessageLength/2+1)

	chunks := SplitText(text, MaxMessageLength)

	assert.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len(utf16.Encode([]rune(c))), MaxMessageLength)
	}
	assert.Equal(t, MaxMessageLength/2, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitText_MixedWidths(t *testing.T) {
	// One unit short of the limit, then an emoji that must not be cut
	text := strings.Repeat("я", MaxMessageLength-1) + "🎓" + "ok"

	chunks := SplitText(text, MaxMessageLength)

	assert.Equal(t, []string{strings.Repeat("я", MaxMessageLength-1), "🎓ok"}, chunks)
}
