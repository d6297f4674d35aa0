package driven

import "context"

// Generator defines the driven port for text generation. One call per file,
// no retries at this layer; failures are *model.GenerationError so callers
// can distinguish safety-filtered responses.
type Generator interface {
	GenerateText(ctx context.Context, modelName, prompt string) (string, error)
}
