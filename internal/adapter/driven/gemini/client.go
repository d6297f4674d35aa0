// Package gemini implements the Generator port using the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/oetdev/toolforge/internal/domain/model"
	"github.com/oetdev/toolforge/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Generator = (*Client)(nil)

// Client wraps a genai client for single-shot text generation.
type Client struct {
	genai *genai.Client
}

// NewClient creates a Gemini-backed generator using API-key auth.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{genai: client}, nil
}

// GenerateText sends one prompt to the given model and returns the
// concatenated text of the first candidate. No retries; a missing response
// or a safety-filtered candidate is a GenerationError.
func (c *Client) GenerateText(ctx context.Context, modelName, prompt string) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	})
	if err != nil {
		return "", &model.GenerationError{SafetyBlocked: looksSafetyBlocked(err.Error()), Err: err}
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", &model.GenerationError{Err: errors.New("no candidates in response")}
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety || candidate.FinishReason == genai.FinishReasonProhibitedContent {
		return "", &model.GenerationError{
			SafetyBlocked: true,
			Err:           fmt.Errorf("candidate finished with reason %q", candidate.FinishReason),
		}
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &model.GenerationError{Err: errors.New("candidate has no content parts")}
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}

	return sb.String(), nil
}

// looksSafetyBlocked matches the provider's safety-block signatures in an
// error message.
func looksSafetyBlocked(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "safety") || strings.Contains(lower, "blocked")
}
