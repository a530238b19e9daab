package handler

import (
	"context"
	"strings"
	"testing"
	"time"

	"schedulebot/internal/cache"
	"schedulebot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    `{"menu":"cancel"}`,
			expected: `{"menu":"cancel"}`,
		},
		{
			name:     "string with whitespace",
			input:    "  #abc  ",
			expected: "#abc",
		},
		{
			name:     "string with newline",
			input:    "test\ndata",
			expected: "testdata",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "test\x00data\x01",
			expected: "testdata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCallbackData(t *testing.T) {
	ctx := context.Background()
	stash := cache.NewMemoryStash(time.Hour)

	tests := []struct {
		name    string
		payload domain.Payload
		stashed bool
	}{
		{
			name:    "short payload inline",
			payload: domain.Payload{domain.PayloadMenu: "cancel"},
		},
		{
			name: "long payload stashed",
			payload: domain.Payload{
				domain.PayloadMenu:      "set_teacher",
				domain.PayloadFoundID:   "12345",
				domain.PayloadFoundName: "Константинопольский Константин Константинович",
			},
			stashed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := encodeCallbackData(ctx, stash, tt.payload)
			require.NoError(t, err)

			assert.LessOrEqual(t, len(data), callbackDataLimit)
			assert.Equal(t, tt.stashed, strings.HasPrefix(data, stashPrefix))

			decoded, err := decodeCallbackData(ctx, stash, data)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, decoded)
		})
	}
}

func TestDecodeCallbackData_Errors(t *testing.T) {
	ctx := context.Background()
	stash := cache.NewMemoryStash(time.Hour)

	_, err := decodeCallbackData(ctx, stash, "#unknown")
	assert.ErrorIs(t, err, errPayloadExpired)

	_, err = decodeCallbackData(ctx, stash, "view_days")
	assert.Error(t, err)
}
