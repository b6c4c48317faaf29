package llm

import (
	"context"
	"fmt"

	"support_chat_backend/internal/config"
	"support_chat_backend/internal/reply"
)

// New builds the client selected by cfg. It returns a nil client, and no
// error, when no provider is configured; the reply engine then answers with
// canned replies only.
func New(ctx context.Context, cfg config.LLMConfig) (reply.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var client reply.Client
	switch cfg.Provider {
	case config.ProviderGroq:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = GroqBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = DefaultGroqModel
		}
		client = NewOpenAIClient(OpenAIConfig{
			Provider: config.ProviderGroq,
			APIKey:   cfg.APIKey,
			Model:    model,
			BaseURL:  baseURL,
			Timeout:  cfg.Timeout(),
		})
	case config.ProviderOpenAI:
		client = NewOpenAIClient(OpenAIConfig{
			Provider: config.ProviderOpenAI,
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout(),
		})
	case config.ProviderAnthropic:
		client = NewAnthropicClient(AnthropicConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout(),
		})
	case config.ProviderGemini:
		gc, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		client = gc
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	return Observe(cfg.Provider, client), nil
}
