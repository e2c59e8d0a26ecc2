package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
)

// NewClient creates and returns a Client based on the provided configuration.
// It acts as a factory, selecting either the Ollama or Gemini implementation.
func NewClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	log.Info("Initializing AI client", "provider", cfg.Provider)

	switch cfg.Provider {
	case "ollama":
		client, err := newOllamaClient(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return client, nil
	case "gemini":
		client, err := newGeminiClient(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown AI provider specified: %s", cfg.Provider)
	}
}
