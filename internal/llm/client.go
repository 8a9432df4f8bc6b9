package llm

import "context"

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the generation backend boundary: one fully assembled prompt in,
// fully assembled generated text out. Implementations may stream internally
// but must concatenate chunks before returning. A failed or timed-out call
// surfaces as a single error; the caller decides whether the turn aborts or
// degrades.
type Client interface {
	Generate(ctx context.Context, prompt string) (Response, error)
}
