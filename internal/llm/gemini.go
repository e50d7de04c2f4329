package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms/googleai"
)

func NewGeminiAdapter(model, baseURL, apiKey string) (*Adapter, error) {
	if model == "" {
		model = googleai.DefaultOptions().DefaultModel
	}

	opts := []googleai.Option{
		googleai.WithDefaultModel(model),
	}
	if baseURL != "" {
		opts = append(opts, googleai.WithRest())
	}
	if apiKey != "" {
		opts = append(opts, googleai.WithAPIKey(apiKey))
	}

	client, err := googleai.New(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return newAdapter(client, model), nil
}
