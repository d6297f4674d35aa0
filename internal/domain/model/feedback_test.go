package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oetdev/toolforge/internal/domain/model"
)

func TestFormatFeedbackBody(t *testing.T) {
	t.Run("explicit emoji", func(t *testing.T) {
		body := model.FormatFeedbackBody("🐛", "the output pane overflows")
		assert.Equal(t, "User Feedback: 🐛\n\nthe output pane overflows", body)
	})

	t.Run("empty emoji falls back to default", func(t *testing.T) {
		body := model.FormatFeedbackBody("", "looks good")
		assert.Equal(t, "User Feedback: "+model.DefaultFeedbackEmoji+"\n\nlooks good", body)
	})
}

func TestParseFeedbackBody(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		emoji string
		text  string
		ok    bool
	}{
		{
			name:  "canonical body",
			body:  "User Feedback: 🐛\n\nthe output pane overflows",
			emoji: "🐛",
			text:  "the output pane overflows",
			ok:    true,
		},
		{
			name:  "multiline text preserved",
			body:  "User Feedback: 💡\n\nfirst line\n\nsecond paragraph",
			emoji: "💡",
			text:  "first line\n\nsecond paragraph",
			ok:    true,
		},
		{
			name:  "crlf normalized",
			body:  "User Feedback: 🐛\r\n\r\nwindows client",
			emoji: "🐛",
			text:  "windows client",
			ok:    true,
		},
		{name: "ordinary comment", body: "nice tool!"},
		{name: "header without blank line", body: "User Feedback: 🐛\nno separator"},
		{name: "header with space emoji", body: "User Feedback:  \n\ntext"},
		{name: "prefix mid-body", body: "as noted, User Feedback: 🐛\n\ntext"},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emoji, text, ok := model.ParseFeedbackBody(tt.body)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.emoji, emoji)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestFeedbackRoundTrip(t *testing.T) {
	body := model.FormatFeedbackBody("🚀", "ship it")
	emoji, text, ok := model.ParseFeedbackBody(body)
	assert.True(t, ok)
	assert.Equal(t, "🚀", emoji)
	assert.Equal(t, "ship it", text)
}
