package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderMock      = "mock"
)

// Config is the process configuration, parsed from the environment.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	DataPath    string `env:"DATA_PATH" envDefault:"./data"`

	Provider        string `env:"LLM_PROVIDER" envDefault:"ollama"`
	ChatModel       string `env:"CHAT_MODEL" envDefault:"llama3"`
	ExtractionModel string `env:"EXTRACTION_MODEL"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	OllamaBaseURL   string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`

	MaxRetries      int           `env:"LLM_MAX_RETRIES" envDefault:"3"`
	RetryDelay      time.Duration `env:"LLM_RETRY_DELAY" envDefault:"1s"`
	RequestTimeout  time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"60s"`
	TextTemperature float64       `env:"LLM_TEXT_TEMPERATURE" envDefault:"0.7"`
	JSONTemperature float64       `env:"LLM_JSON_TEMPERATURE" envDefault:"0.3"`
	MaxTokens       int           `env:"LLM_MAX_TOKENS" envDefault:"1000"`

	// RedisURL enables the Redis session store; empty keeps sessions
	// in process memory.
	RedisURL string `env:"REDIS_URL"`
}

// Load parses and validates configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.ExtractionModel == "" {
		cfg.ExtractionModel = cfg.ChatModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks provider selection and its credentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case ProviderOllama, ProviderMock:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES cannot be negative")
	}
	if c.TextTemperature < 0 || c.TextTemperature > 2 {
		return fmt.Errorf("LLM_TEXT_TEMPERATURE must be between 0 and 2")
	}
	if c.JSONTemperature < 0 || c.JSONTemperature > 2 {
		return fmt.Errorf("LLM_JSON_TEMPERATURE must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}
	return nil
}

// SlogLevel maps the configured log level string onto slog levels.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
