package domain

import (
	"context"
	"errors"
)

// MaxMessageLength is the largest message body delivered in one send
const MaxMessageLength = 4000

// ErrPeerUnreachable is returned by a sender when the user can no longer
// receive messages, e.g. after blocking the bot.
var ErrPeerUnreachable = errors.New("peer unreachable")

// KeyboardKind selects how a keyboard is presented
type KeyboardKind int

const (
	// KeyboardInline buttons are attached to the message and carry payloads
	KeyboardInline KeyboardKind = iota
	// KeyboardReply buttons send their label back as text
	KeyboardReply
	// KeyboardRemove hides a previously shown reply keyboard
	KeyboardRemove
)

// Button is a single keyboard button
type Button struct {
	Label   string
	Payload Payload
}

// Keyboard is a transport-neutral keyboard descriptor
type Keyboard struct {
	Kind KeyboardKind
	Rows [][]Button
}

// Message is one outbound send
type Message struct {
	Text        string
	Keyboard    *Keyboard
	LinkPreview bool
}

// SplitText cuts text into chunks of at most limit UTF-16 code units,
// preserving order. Characters outside the BMP count twice and are never
// cut in half. Empty text yields no chunks.
func SplitText(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		return []string{text}
	}
	var (
		chunks []string
		start  int
		units  int
	)
	for i, r := range text {
		n := utf16Len(r)
		if units+n > limit && i > start {
			chunks = append(chunks, text[start:i])
			start, units = i, 0
		}
		units += n
	}
	return append(chunks, text[start:])
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// Split cuts the message into sends of at most MaxMessageLength units.
// Only the last part carries the keyboard. An empty message has no parts.
func (m Message) Split() []Message {
	chunks := SplitText(m.Text, MaxMessageLength)
	if len(chunks) == 0 {
		return nil
	}
	parts := make([]Message, len(chunks))
	for i, c := range chunks {
		parts[i] = Message{Text: c, LinkPreview: m.LinkPreview}
	}
	parts[len(parts)-1].Keyboard = m.Keyboard
	return parts
}

// Sender delivers outbound messages to a user
type Sender interface {
	Send(ctx context.Context, peerID int64, msg Message) error
}
