package chat

import (
	"context"

	"reactcalc/internal/middleware"
)

// Adapter abstracts chat completion providers.
type Adapter interface {
	// Complete sends the ordered history and returns the text of the next
	// assistant message. params may be nil.
	Complete(ctx context.Context, history []Message, params *middleware.LLMParams) (string, error)
}

// AdapterFunc lets a plain function act as an Adapter.
type AdapterFunc func(ctx context.Context, history []Message, params *middleware.LLMParams) (string, error)

func (f AdapterFunc) Complete(ctx context.Context, history []Message, params *middleware.LLMParams) (string, error) {
	return f(ctx, history, params)
}
