package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/parley-engine/parley/internal/config"
	"github.com/parley-engine/parley/pkg/chat"
	"github.com/parley-engine/parley/pkg/textfilter"
)

// jsonWord matches the literal word "json" on word boundaries. Providers
// with a JSON response mode require it somewhere in the outgoing messages;
// "jsonify" does not count.
var jsonWord = regexp.MustCompile(`(?i)\bjson\b`)

// TextRequest is one free-text generation call.
type TextRequest struct {
	User            string
	System          string
	AssistantPrefix string
	// History is inserted between the system prompt and the user message.
	History []chat.Message
	// Temperature overrides the configured default when set.
	Temperature *float64
	// MaxTokens overrides the configured default when positive.
	MaxTokens int
	// Model overrides the configured chat model when set.
	Model string
}

// JSONRequest is one JSON-mode generation call. Same shape as TextRequest;
// the word "json" must appear in at least one outgoing message.
type JSONRequest struct {
	User            string
	System          string
	AssistantPrefix string
	Temperature     *float64
	MaxTokens       int
	Model           string
}

// TextResult carries the cleaned completion and any extracted reasoning.
type TextResult struct {
	Reasoning string
	Content   string
}

// JSONResult carries the parsed JSON object and any extracted reasoning.
type JSONResult struct {
	Reasoning string
	Content   json.RawMessage
}

// Decode unmarshals the JSON content into v.
func (r *JSONResult) Decode(v any) error {
	return json.Unmarshal(r.Content, v)
}

// Client wraps a Provider with pre-flight validation, retry with
// exponential backoff, reasoning-tag extraction, and JSON-mode parsing.
type Client struct {
	provider Provider
	cfg      *config.Config
	logger   *slog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewClient creates an inference client over the given provider.
func NewClient(provider Provider, cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		sleep:    time.Sleep,
	}
}

// validateRequest runs the pre-flight checks shared by both modes.
func validateRequest(user, system, prefix string, temperature *float64) error {
	if strings.TrimSpace(user) == "" {
		return configErrorf("user text cannot be empty")
	}
	if system != "" && strings.TrimSpace(system) == "" {
		return configErrorf("system text cannot be blank when supplied")
	}
	if prefix != "" && strings.TrimSpace(prefix) == "" {
		return configErrorf("assistant prefix cannot be blank when supplied")
	}
	if temperature != nil && (*temperature < 0 || *temperature > 2) {
		return configErrorf("temperature %.2f is outside [0, 2]", *temperature)
	}
	return nil
}

// buildMessages assembles the ordered message list.
func buildMessages(user, system, prefix string, history []chat.Message) []chat.Message {
	var messages []chat.Message
	if system != "" {
		messages = append(messages, chat.Message{Role: chat.RoleSystem, Content: system})
	}
	messages = append(messages, history...)
	messages = append(messages, chat.Message{Role: chat.RoleUser, Content: user})
	if prefix != "" {
		messages = append(messages, chat.Message{Role: chat.RoleAssistant, Content: prefix})
	}
	return messages
}

func (c *Client) pick(temperature *float64, fallback float64) float64 {
	if temperature != nil {
		return *temperature
	}
	return fallback
}

func (c *Client) pickTokens(maxTokens int) int {
	if maxTokens > 0 {
		return maxTokens
	}
	return c.cfg.MaxTokens
}

func (c *Client) pickModel(model string) string {
	if model != "" {
		return model
	}
	return c.cfg.ChatModel
}

// backoff sleeps retry_delay * 2^attempt before the next attempt.
func (c *Client) backoff(attempt int) {
	c.sleep(c.cfg.RetryDelay * (1 << attempt))
}

// GenerateText performs a text-mode completion. Provider failures and empty
// completions are retried with exponential backoff; reasoning tag spans are
// stripped from the returned content.
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (*TextResult, error) {
	if err := validateRequest(req.User, req.System, req.AssistantPrefix, req.Temperature); err != nil {
		return nil, err
	}

	providerReq := ProviderRequest{
		Model:       c.pickModel(req.Model),
		Messages:    buildMessages(req.User, req.System, req.AssistantPrefix, req.History),
		Temperature: c.pick(req.Temperature, c.cfg.TextTemperature),
		MaxTokens:   c.pickTokens(req.MaxTokens),
	}

	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.backoff(attempt - 1)
		}

		raw, err := c.provider.ChatCompletion(ctx, providerReq)
		if err != nil {
			lastErr = err
			c.logger.Warn("completion attempt failed",
				"provider", c.provider.Name(), "attempt", attempt+1, "error", err.Error())
			continue
		}

		reasoning, content := textfilter.ExtractReasoning(raw)
		content = strings.TrimSpace(content)
		if content == "" {
			lastErr = fmt.Errorf("provider returned an empty completion")
			c.logger.Warn("completion attempt failed",
				"provider", c.provider.Name(), "attempt", attempt+1, "error", lastErr.Error())
			continue
		}

		if req.AssistantPrefix != "" {
			content = req.AssistantPrefix + content
		}
		return &TextResult{Reasoning: reasoning, Content: content}, nil
	}

	return nil, &TransientError{Attempts: attempts, Cause: lastErr}
}

// GenerateJSON performs a JSON-mode completion. Malformed JSON counts as a
// failed attempt alongside provider errors; when the retry budget is spent,
// the terminal error reflects the last failure kind.
func (c *Client) GenerateJSON(ctx context.Context, req JSONRequest) (*JSONResult, error) {
	if err := validateRequest(req.User, req.System, req.AssistantPrefix, req.Temperature); err != nil {
		return nil, err
	}
	if !jsonWord.MatchString(req.User) && !jsonWord.MatchString(req.System) && !jsonWord.MatchString(req.AssistantPrefix) {
		return nil, configErrorf("JSON mode requires the word \"json\" in an outgoing message")
	}

	providerReq := ProviderRequest{
		Model:       c.pickModel(req.Model),
		Messages:    buildMessages(req.User, req.System, req.AssistantPrefix, nil),
		Temperature: c.pick(req.Temperature, c.cfg.JSONTemperature),
		MaxTokens:   c.pickTokens(req.MaxTokens),
		JSONMode:    true,
	}

	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	var lastRaw string
	malformed := false
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.backoff(attempt - 1)
		}

		raw, err := c.provider.ChatCompletion(ctx, providerReq)
		if err != nil {
			lastErr, malformed = err, false
			c.logger.Warn("completion attempt failed",
				"provider", c.provider.Name(), "attempt", attempt+1, "error", err.Error())
			continue
		}

		reasoning, content := textfilter.ExtractReasoning(raw)
		content = strings.TrimSpace(content)
		if content == "" {
			lastErr, malformed = fmt.Errorf("provider returned an empty completion"), false
			continue
		}

		obj, err := parseJSONObject(content, req.AssistantPrefix)
		if err != nil {
			lastErr, malformed, lastRaw = err, true, content
			c.logger.Warn("completion was not a JSON object",
				"provider", c.provider.Name(), "attempt", attempt+1, "error", err.Error())
			continue
		}

		return &JSONResult{Reasoning: reasoning, Content: obj}, nil
	}

	if malformed {
		return nil, &MalformedResponseError{Attempts: attempts, Raw: lastRaw, Cause: lastErr}
	}
	return nil, &TransientError{Attempts: attempts, Cause: lastErr}
}

// parseJSONObject parses the completion as a single JSON object. With an
// assistant prefix, the cleaned completion alone is tried first in case the
// model emitted the whole object itself, then prefix+completion.
func parseJSONObject(content, prefix string) (json.RawMessage, error) {
	if obj, err := decodeObject(content); err == nil {
		return obj, nil
	}
	if prefix != "" {
		return decodeObject(prefix + content)
	}
	return decodeObject(content)
}

func decodeObject(s string) (json.RawMessage, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, fmt.Errorf("response does not start a JSON object")
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return json.RawMessage(s), nil
}
