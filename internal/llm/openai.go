package llm

import (
	"github.com/tmc/langchaingo/llms/openai"
)

func NewOpenAIAdapter(model, baseURL, token string) (*Adapter, error) {
	opts := []openai.Option{
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if token != "" {
		opts = append(opts, openai.WithToken(token))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return newAdapter(client, model), nil
}
