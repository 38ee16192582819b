package llm

import (
	"fmt"

	"eu5advisor/internal/config"
	"eu5advisor/pkg/advisortypes"
)

// NewClient returns the chat client for the configured provider.
func NewClient(cfg *config.Config) (advisortypes.ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty for provider '%s'", cfg.Provider)
	}

	rules := ParamRules{
		Temperature:         cfg.Temperature,
		MaxCompletionTokens: cfg.MaxCompletionTokens,
	}

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, rules), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, rules), nil
	case config.ProviderGemini:
		return NewGeminiClient(cfg.APIKey, rules), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
