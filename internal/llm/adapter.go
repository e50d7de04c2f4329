package llm

import (
	"context"
	"errors"

	"reactcalc/internal/chat"
	"reactcalc/internal/middleware"

	"github.com/tmc/langchaingo/llms"
)

var ErrEmptyResponse = errors.New("empty response from model")

// generator is the subset of llms.Model the adapter needs.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Adapter sends the transcript to any langchaingo backend.
type Adapter struct {
	client generator
	model  string
}

var _ chat.Adapter = (*Adapter)(nil)

func newAdapter(client generator, model string) *Adapter {
	return &Adapter{client: client, model: model}
}

// Model returns the default model name used for calls.
func (a *Adapter) Model() string {
	return a.model
}

func (a *Adapter) Complete(ctx context.Context, history []chat.Message, params *middleware.LLMParams) (string, error) {
	resp, err := a.client.GenerateContent(ctx, convertHistory(history), a.callOptions(params)...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

func (a *Adapter) callOptions(params *middleware.LLMParams) []llms.CallOption {
	opts := make([]llms.CallOption, 0, 6)
	if a.model != "" {
		opts = append(opts, llms.WithModel(a.model))
	}
	if params == nil {
		return opts
	}
	if params.Model != "" {
		opts = append(opts, llms.WithModel(params.Model))
	}
	if params.Temperature != 0 {
		opts = append(opts, llms.WithTemperature(params.Temperature))
	}
	if params.TopP != 0 {
		opts = append(opts, llms.WithTopP(params.TopP))
	}
	if params.MaxTokens != 0 {
		opts = append(opts, llms.WithMaxTokens(params.MaxTokens))
	}
	if len(params.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(params.Stop))
	}
	return opts
}

func convertHistory(history []chat.Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case chat.RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case chat.RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case chat.RoleAssistant:
			content := m.Content
			// Some backends reject assistant turns without text.
			if content == "" {
				content = " "
			}
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, content))
		}
	}
	return messages
}
