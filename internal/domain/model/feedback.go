package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultFeedbackEmoji is used when a caller posts feedback without one.
const DefaultFeedbackEmoji = "💬"

// feedbackHeaderPattern matches the fixed two-line feedback comment header:
// "User Feedback: <emoji>", a blank line, then the free-text body. Comments
// that do not match are ordinary discussion, not feedback.
var feedbackHeaderPattern = regexp.MustCompile(`(?s)^User Feedback: (\S+)\n\n(.*)$`)

// FeedbackComment is a PR comment conforming to the feedback header format.
type FeedbackComment struct {
	ID          int64
	AuthorLogin string
	IsAppAuthor bool
	Emoji       string
	Text        string
	CreatedAt   time.Time
}

// FormatFeedbackBody renders the canonical feedback comment body.
func FormatFeedbackBody(emoji, text string) string {
	if emoji == "" {
		emoji = DefaultFeedbackEmoji
	}
	return fmt.Sprintf("User Feedback: %s\n\n%s", emoji, text)
}

// ParseFeedbackBody extracts the emoji and free text from a comment body.
// The second return is false when the body is not feedback-shaped.
func ParseFeedbackBody(body string) (emoji, text string, ok bool) {
	m := feedbackHeaderPattern.FindStringSubmatch(strings.ReplaceAll(body, "\r\n", "\n"))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
