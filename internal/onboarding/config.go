package onboarding

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath is where setup writes and the CLI reads by default.
const DefaultConfigPath = "~/.reactcalc/config.json"

// MiddlewareSetting holds the user's choice for a specific middleware
type MiddlewareSetting struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// Config represents the settings gathered during onboarding
type Config struct {
	Provider     string              `json:"provider"`
	Model        string              `json:"model"`
	BaseURL      string              `json:"base_url,omitempty"`
	APIKey       string              `json:"api_key,omitempty"`
	SystemPrompt string              `json:"system_prompt,omitempty"`
	MaxTurns     int                 `json:"max_turns,omitempty"`
	TokenBudget  int                 `json:"token_budget,omitempty"`
	Middlewares  []MiddlewareSetting `json:"middlewares,omitempty"`
}

// DisabledMiddlewares returns the ids switched off in the config.
func (cfg *Config) DisabledMiddlewares() []string {
	var disabled []string
	for _, m := range cfg.Middlewares {
		if !m.Enabled {
			disabled = append(disabled, m.ID)
		}
	}
	return disabled
}

// LoadFromFile loads the configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

func (cfg *Config) SaveToFile(path string) error {
	path, err := ExpandHome(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// The file may carry an API key.
	return os.WriteFile(path, data, 0o600)
}

// ExpandHome resolves a leading "~/" to the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
