package adapter

import "context"

// Assistant is the optional LLM fallback behind the scripted support chat.
type Assistant interface {
	Answer(ctx context.Context, question string) (string, error)
}
