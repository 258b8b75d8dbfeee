package services

import (
	"context"

	"github.com/parley-engine/parley/pkg/chat"
)

// ProviderRequest is one chat-completion call in provider-neutral form.
type ProviderRequest struct {
	Model       string
	Messages    []chat.Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider to emit a single JSON object where the
	// backend supports a response-format flag. Providers without such a
	// flag ignore it; the client parses and retries either way.
	JSONMode bool
}

// Provider is a chat-completion backend. Implementations own the wire
// format; retry, reasoning extraction, and JSON parsing live in Client.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// ChatCompletion performs one completion call and returns the raw
	// assistant text.
	ChatCompletion(ctx context.Context, req ProviderRequest) (string, error)
}

// ModelInitializer is implemented by providers that can prepare a model
// before first use (pulling it, checking readiness).
type ModelInitializer interface {
	InitModel(ctx context.Context, modelName string) error
}
