package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-engine/parley/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Provider:        config.ProviderMock,
		ChatModel:       "test-model",
		ExtractionModel: "test-model",
		MaxRetries:      3,
		RetryDelay:      time.Second,
		TextTemperature: 0.7,
		JSONTemperature: 0.3,
		MaxTokens:       1000,
	}
}

// testClient wires a client to a mock provider with sleeps recorded
// instead of taken.
func testClient(mock *MockProvider) (*Client, *[]time.Duration) {
	client := NewClient(mock, testConfig(), nil)
	var slept []time.Duration
	client.sleep = func(d time.Duration) { slept = append(slept, d) }
	return client, &slept
}

func TestGenerateTextPreflight(t *testing.T) {
	mock := NewMockProvider()
	client, _ := testClient(mock)
	ctx := context.Background()

	tests := []struct {
		name string
		req  TextRequest
	}{
		{"empty user text", TextRequest{User: "  "}},
		{"blank system text", TextRequest{User: "hi", System: "   "}},
		{"blank assistant prefix", TextRequest{User: "hi", AssistantPrefix: " "}},
		{"temperature too high", TextRequest{User: "hi", Temperature: ptr(2.5)}},
		{"temperature negative", TextRequest{User: "hi", Temperature: ptr(-0.1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GenerateText(ctx, tt.req)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
	assert.Equal(t, 0, mock.CallCount(), "pre-flight failures make no provider calls")
}

func TestGenerateTextStripsReasoning(t *testing.T) {
	mock := NewMockProvider()
	mock.Script(MockResponse{Content: "<think>X</think>Y"})
	client, _ := testClient(mock)

	res, err := client.GenerateText(context.Background(), TextRequest{User: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "X", res.Reasoning)
	assert.Equal(t, "Y", res.Content)
}

func TestGenerateTextRetriesThenSucceeds(t *testing.T) {
	mock := NewMockProvider()
	mock.FailTimes(2, "recovered")
	client, slept := testClient(mock)

	res, err := client.GenerateText(context.Background(), TextRequest{User: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Content)
	assert.Equal(t, 3, mock.CallCount(), "fails twice, succeeds on the third attempt")

	// Exponential backoff: delay, then double.
	require.Len(t, *slept, 2)
	assert.Equal(t, time.Second, (*slept)[0])
	assert.Equal(t, 2*time.Second, (*slept)[1])
}

func TestGenerateTextExhaustsRetries(t *testing.T) {
	mock := NewMockProvider()
	mock.ChatCompletionFunc = func(ctx context.Context, req ProviderRequest) (string, error) {
		return "", errors.New("connection refused")
	}
	client, _ := testClient(mock)

	_, err := client.GenerateText(context.Background(), TextRequest{User: "hello"})
	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, 4, transient.Attempts, "max_retries+1 total attempts")
	assert.Equal(t, 4, mock.CallCount())
	assert.ErrorContains(t, transient.Cause, "connection refused")
}

func TestGenerateTextEmptyCompletionIsRetried(t *testing.T) {
	mock := NewMockProvider()
	mock.Script(
		MockResponse{Content: "   "},
		MockResponse{Content: "real answer"},
	)
	client, _ := testClient(mock)

	res, err := client.GenerateText(context.Background(), TextRequest{User: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "real answer", res.Content)
	assert.Equal(t, 2, mock.CallCount())
}

func TestGenerateTextAssistantPrefix(t *testing.T) {
	mock := NewMockProvider()
	mock.Script(MockResponse{Content: " certainly the key."})
	client, _ := testClient(mock)

	res, err := client.GenerateText(context.Background(), TextRequest{
		User:            "what do you want?",
		AssistantPrefix: "I want",
	})
	require.NoError(t, err)
	assert.Equal(t, "I wantcertainly the key.", res.Content)

	last, ok := mock.LastCall()
	require.True(t, ok)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, "assistant", last.Messages[1].Role)
}

func TestGenerateTextTemperatureDefaults(t *testing.T) {
	mock := NewMockProvider()
	client, _ := testClient(mock)

	_, err := client.GenerateText(context.Background(), TextRequest{User: "hi"})
	require.NoError(t, err)
	last, _ := mock.LastCall()
	assert.Equal(t, 0.7, last.Temperature)
	assert.Equal(t, 1000, last.MaxTokens)
	assert.False(t, last.JSONMode)
}

func TestGenerateJSONRequiresJSONWord(t *testing.T) {
	mock := NewMockProvider()
	client, _ := testClient(mock)

	_, err := client.GenerateJSON(context.Background(), JSONRequest{
		User:   "classify this input",
		System: "respond with a structured object",
	})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, mock.CallCount(), "no network call without the json marker")

	// Word boundary: "jsonify" does not count.
	_, err = client.GenerateJSON(context.Background(), JSONRequest{
		User: "jsonify the following",
	})
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, mock.CallCount())

	mock.Script(MockResponse{Content: `{"ok": true}`})
	res, err := client.GenerateJSON(context.Background(), JSONRequest{
		User: "Respond ONLY with a JSON object.",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(res.Content))
}

func TestGenerateJSONModeAndTemperature(t *testing.T) {
	mock := NewMockProvider()
	mock.Script(MockResponse{Content: `{}`})
	client, _ := testClient(mock)

	_, err := client.GenerateJSON(context.Background(), JSONRequest{User: "reply in json"})
	require.NoError(t, err)

	last, _ := mock.LastCall()
	assert.True(t, last.JSONMode)
	assert.Equal(t, 0.3, last.Temperature, "JSON default differs from text default")
}

func TestGenerateJSONMalformedIsRetriedThenTerminal(t *testing.T) {
	mock := NewMockProvider()
	mock.Script(
		MockResponse{Content: "not an object"},
		MockResponse{Content: `{"fixed": true}`},
	)
	client, _ := testClient(mock)

	res, err := client.GenerateJSON(context.Background(), JSONRequest{User: "reply in json"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fixed": true}`, string(res.Content))
	assert.Equal(t, 2, mock.CallCount())

	mock.Script(MockResponse{Content: "still not json {"})
	_, err = client.GenerateJSON(context.Background(), JSONRequest{User: "reply in json"})
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 4, malformed.Attempts)
}

func TestGenerateJSONAssistantPrefixCompletion(t *testing.T) {
	mock := NewMockProvider()
	client, _ := testClient(mock)

	// The model completed the object itself; the cleaned completion alone
	// parses and is used verbatim.
	mock.Script(MockResponse{Content: `{"action_type": "dialogue"}`})
	res, err := client.GenerateJSON(context.Background(), JSONRequest{
		User:            "reply in json",
		AssistantPrefix: `{"action_type":`,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action_type": "dialogue"}`, string(res.Content))

	// The model only finished the object; prefix + completion parses.
	mock.Script(MockResponse{Content: ` "dialogue"}`})
	res, err = client.GenerateJSON(context.Background(), JSONRequest{
		User:            "reply in json",
		AssistantPrefix: `{"action_type":`,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action_type": "dialogue"}`, string(res.Content))
}

func TestGenerateJSONReasoningExtracted(t *testing.T) {
	mock := NewMockProvider()
	mock.Script(MockResponse{Content: "<reasoning>weighing options</reasoning>{\"choice\": 1}"})
	client, _ := testClient(mock)

	res, err := client.GenerateJSON(context.Background(), JSONRequest{User: "reply in json"})
	require.NoError(t, err)
	assert.Equal(t, "weighing options", res.Reasoning)
	assert.JSONEq(t, `{"choice": 1}`, string(res.Content))
}

func ptr(f float64) *float64 {
	return &f
}
