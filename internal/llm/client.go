package llm

import "context"

// LLMClient is the extraction oracle's transport: a prompt in, raw text
// out. Everything this service knows about natural language lives on the
// other side of this interface.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
