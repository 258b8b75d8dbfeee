package services

import (
	"fmt"
	"log/slog"

	"github.com/parley-engine/parley/internal/config"
)

// NewProvider builds the configured chat-completion provider.
func NewProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.RequestTimeout, logger), nil
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, logger), nil
	case config.ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.RequestTimeout, logger), nil
	case config.ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// NewSessionStore builds the configured session store. Redis when a URL is
// set, process memory otherwise.
func NewSessionStore(cfg *config.Config, logger *slog.Logger) SessionStore {
	if cfg.RedisURL != "" {
		return NewRedisStore(cfg.RedisURL, logger)
	}
	return NewMemoryStore()
}
