package server

import (
	"context"
	"fmt"
	"log/slog"

	"example.com/paisa-sahayogi/backend/internal/ai"
	"example.com/paisa-sahayogi/backend/internal/config"
)

// NewAIClient builds the configured provider client wrapped in the retry policy.
func NewAIClient(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (ai.Client, error) {
	var client ai.Client
	switch cfg.Provider {
	case config.ProviderGemini:
		gemini, err := ai.NewGeminiClient(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
		if err != nil {
			return nil, err
		}
		client = gemini
	case config.ProviderOpenAI:
		client = ai.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	return ai.NewRetryClient(client, cfg.MaxRetries, cfg.RetryBackoff, logger), nil
}
