package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/peerscope/internal/models"
)

// fakeTransport answers every request with the given chat completion and
// records the decoded request body.
func fakeTransport(t *testing.T, completion any, captured *map[string]any) option.RequestOption {
	t.Helper()

	body, err := json.Marshal(completion)
	require.NoError(t, err)

	return option.WithMiddleware(func(req *http.Request, _ option.MiddlewareNext) (*http.Response, error) {
		if captured != nil && req.Body != nil {
			data, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(data, captured)
		}
		return &http.Response{
			StatusCode:    http.StatusOK,
			Body:          io.NopCloser(bytes.NewReader(body)),
			ContentLength: int64(len(body)),
			Header:        http.Header{"Content-Type": []string{"application/json"}},
		}, nil
	})
}

func chatCompletion(content string) map[string]any {
	type m = map[string]any
	return m{
		"id":      "chatcmpl-1",
		"created": 0,
		"model":   "gpt-4o-mini",
		"object":  "chat.completion",
		"choices": []any{m{
			"index":         0,
			"finish_reason": "stop",
			"message":       m{"role": "assistant", "content": content},
		}},
	}
}

func TestGenerateContent(t *testing.T) {
	var req map[string]any
	client := NewClient("test-key",
		[]option.RequestOption{option.WithBaseURL("https://fake/"), fakeTransport(t, chatCompletion("Buy and hold."), &req)},
		WithSystemPrompt("You are an analyst."),
		WithTemperature(0),
	)

	text, err := client.GenerateContent(context.Background(), "Should I buy ACME?")
	require.NoError(t, err)
	assert.Equal(t, "Buy and hold.", text)
	assert.Equal(t, "openai", client.Provider())

	assert.Equal(t, "gpt-4o-mini", req["model"])
	messages, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, 0.0, req["temperature"])
}

func TestGenerateContent_NoSystemPrompt(t *testing.T) {
	var req map[string]any
	client := NewClient("test-key",
		[]option.RequestOption{option.WithBaseURL("https://fake/"), fakeTransport(t, chatCompletion("ok"), &req)},
		WithModel("gpt-4o"),
	)

	_, err := client.GenerateContent(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", req["model"])
	assert.Len(t, req["messages"], 1)
}

func TestGenerateContent_EmptyChoices(t *testing.T) {
	empty := chatCompletion("")
	empty["choices"] = []any{}
	client := NewClient("test-key", []option.RequestOption{option.WithBaseURL("https://fake/"), fakeTransport(t, empty, nil)})

	_, err := client.GenerateContent(context.Background(), "hi")
	assert.True(t, errors.Is(err, models.ErrEmptyResponse), "got %v", err)
}

func TestGenerateContent_BlankContent(t *testing.T) {
	client := NewClient("test-key", []option.RequestOption{option.WithBaseURL("https://fake/"), fakeTransport(t, chatCompletion("   "), nil)})

	_, err := client.GenerateContent(context.Background(), "hi")
	assert.True(t, errors.Is(err, models.ErrEmptyResponse), "got %v", err)
}
