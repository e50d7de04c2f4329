package llm

import (
	"fmt"
	"os"
	"strings"

	"reactcalc/internal/chat"
)

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOllama:
		return "llama3.2"
	case ProviderAnthropic:
		return "claude-3-5-sonnet-latest"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o-mini"
	}
}

// Settings selects and configures a completion backend.
type Settings struct {
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string
}

func NewAdapter(s Settings) (chat.Adapter, error) {
	if s.Model == "" {
		s.Model = DefaultModel(s.Provider)
	}

	var (
		a   *Adapter
		err error
	)
	switch s.Provider {
	case ProviderOpenAI, "":
		a, err = NewOpenAIAdapter(s.Model, s.BaseURL, apiKey(s.APIKey, "OPENAI_API_KEY"))
	case ProviderOllama:
		a, err = NewOllamaAdapter(s.Model, s.BaseURL)
	case ProviderAnthropic:
		a, err = NewAnthropicAdapter(s.Model, apiKey(s.APIKey, "ANTHROPIC_API_KEY"))
	case ProviderGemini:
		a, err = NewGeminiAdapter(s.Model, s.BaseURL, apiKey(s.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY"))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", s.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s adapter: %w", s.Provider, err)
	}
	return a, nil
}

// apiKey prefers the explicit key, then the first non-empty env var.
func apiKey(explicit string, envVars ...string) string {
	if strings.TrimSpace(explicit) != "" {
		return strings.TrimSpace(explicit)
	}
	for _, name := range envVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
