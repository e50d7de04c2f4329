package llm

import (
	"github.com/tmc/langchaingo/llms/anthropic"
)

func NewAnthropicAdapter(model, token string) (*Adapter, error) {
	opts := []anthropic.Option{
		anthropic.WithModel(model),
	}
	if token != "" {
		opts = append(opts, anthropic.WithToken(token))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}
	return newAdapter(client, model), nil
}
