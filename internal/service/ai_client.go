package service

import (
	"context"
)

// Completer is the language-model completion service: one prompt in, one text blob out
type Completer interface {
	// Complete requests a deterministic (zero-temperature) completion for prompt
	Complete(ctx context.Context, prompt string) (string, error)
}

// Ensure OpenAIClient implements Completer
var _ Completer = (*OpenAIClient)(nil)
