package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-engine/parley/pkg/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func providerMessages() []chat.Message {
	return []chat.Message{
		{Role: chat.RoleSystem, Content: "You are Mira."},
		{Role: chat.RoleUser, Content: "Will you trade?"},
	}
}

func TestOllamaChatCompletionWireFormat(t *testing.T) {
	var got ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message": {"content": "Deal."}}`))
	}))
	defer server.Close()

	s := NewOllamaService(server.URL, time.Second, testLogger())
	content, err := s.ChatCompletion(context.Background(), ProviderRequest{
		Model:       "llama3",
		Messages:    providerMessages(),
		Temperature: 0.3,
		MaxTokens:   500,
		JSONMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Deal.", content)

	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, 0.3, got.Options.Temperature)
	assert.Equal(t, 500, got.Options.NumPredict)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chat.RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "Will you trade?", got.Messages[1].Content)
}

func TestOllamaChatCompletionTextModeOmitsFormat(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"message": {"content": "Hm."}}`))
	}))
	defer server.Close()

	s := NewOllamaService(server.URL, time.Second, testLogger())
	_, err := s.ChatCompletion(context.Background(), ProviderRequest{
		Model:    "llama3",
		Messages: providerMessages(),
	})
	require.NoError(t, err)
	assert.NotContains(t, raw, "format")
}

func TestOpenAIChatCompletionWireFormat(t *testing.T) {
	var got struct {
		Model          string         `json:"model"`
		Messages       []chat.Message `json:"messages"`
		ResponseFormat *struct {
			Type string `json:"type"`
		} `json:"response_format"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"ok\": true}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	s := NewOpenAIService("test-key", server.URL, testLogger())
	content, err := s.ChatCompletion(context.Background(), ProviderRequest{
		Model:       "gpt-4o-mini",
		Messages:    providerMessages(),
		Temperature: 0.3,
		MaxTokens:   500,
		JSONMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, content)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chat.RoleUser, got.Messages[1].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestOpenAIChatCompletionTextModeOmitsResponseFormat(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-2",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hm."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer server.Close()

	s := NewOpenAIService("test-key", server.URL, testLogger())
	_, err := s.ChatCompletion(context.Background(), ProviderRequest{
		Model:    "gpt-4o-mini",
		Messages: providerMessages(),
	})
	require.NoError(t, err)
	assert.NotContains(t, raw, "response_format")
}
