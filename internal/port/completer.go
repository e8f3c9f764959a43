package port

import "context"

// CompletionRequest carries everything needed for one chat completion call.
type CompletionRequest struct {
	Prompt       string
	System       string
	MaxTokens    int
	UseWebSearch bool
}

// Completer abstracts the LLM chat completion API. Implementations handle
// rate-limit retries internally; any other upstream failure is returned as-is.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
