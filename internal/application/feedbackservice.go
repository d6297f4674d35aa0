package application

import (
	"context"
	"strings"

	"github.com/oetdev/toolforge/internal/domain/model"
)

// FeedbackService reads and writes the structured, emoji-tagged feedback
// comments on tool PRs, distinguishing them from ordinary discussion.
type FeedbackService struct {
	provider *ClientProvider
}

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(provider *ClientProvider) *FeedbackService {
	return &FeedbackService{provider: provider}
}

// ListFeedback returns only the feedback-shaped comments on a PR. Comments
// that do not match the header format are ordinary discussion and excluded
// here (the CI summary still carries them in its raw comment list).
func (s *FeedbackService) ListFeedback(ctx context.Context, prNumber int) ([]model.FeedbackComment, error) {
	session, err := s.provider.Session(ctx)
	if err != nil {
		return nil, err
	}

	comments, err := session.Client.ListIssueComments(ctx, prNumber)
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		return nil, err
	}

	feedback := make([]model.FeedbackComment, 0)
	for _, comment := range comments {
		emoji, text, ok := model.ParseFeedbackBody(comment.Body)
		if !ok {
			continue
		}
		feedback = append(feedback, model.FeedbackComment{
			ID:          comment.ID,
			AuthorLogin: comment.Author,
			IsAppAuthor: isAppAuthor(comment.Author, session.AppLogin),
			Emoji:       emoji,
			Text:        text,
			CreatedAt:   comment.CreatedAt,
		})
	}

	return feedback, nil
}

// PostFeedback writes a feedback comment with the fixed two-line header.
// Empty or whitespace-only text is rejected before any network call; a
// missing emoji falls back to the placeholder glyph.
func (s *FeedbackService) PostFeedback(ctx context.Context, prNumber int, emoji, text string) (*model.FeedbackComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &model.ValidationError{Msg: "feedback text must not be empty"}
	}

	session, err := s.provider.Session(ctx)
	if err != nil {
		return nil, err
	}

	if emoji == "" {
		emoji = model.DefaultFeedbackEmoji
	}

	created, err := session.Client.CreateIssueComment(ctx, prNumber, model.FormatFeedbackBody(emoji, text))
	if err != nil {
		s.provider.InvalidateOnAuthFailure(err)
		return nil, err
	}

	return &model.FeedbackComment{
		ID:          created.ID,
		AuthorLogin: created.Author,
		IsAppAuthor: isAppAuthor(created.Author, session.AppLogin),
		Emoji:       emoji,
		Text:        text,
		CreatedAt:   created.CreatedAt,
	}, nil
}

// isAppAuthor compares a comment author against the app's own login,
// case-insensitively. An unresolved app login means detection is degraded:
// always false, never an error.
func isAppAuthor(author, appLogin string) bool {
	return appLogin != "" && strings.EqualFold(author, appLogin)
}
