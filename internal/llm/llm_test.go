package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newFakeOpenAI(t *testing.T, status int, body string, captured *capturedRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completion(content string) string {
	payload := map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4-turbo-preview",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestOpenAI_CompleteSendsMessagesAndReturnsContent(t *testing.T) {
	var captured capturedRequest
	var auth string
	srv := newFakeOpenAI(t, http.StatusOK, completion("  [1,2]  "), &captured, &auth)

	client := NewOpenAI(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	out, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "be terse"},
			{Role: RoleUser, Content: "todo app"},
		},
		Temperature: 0.7,
		MaxTokens:   4000,
	})
	require.NoError(t, err)

	assert.Equal(t, "[1,2]", out)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, DefaultModel, captured.Model)
	assert.Equal(t, 4000, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "todo app", captured.Messages[1].Content)
}

func TestOpenAI_MissingKey(t *testing.T) {
	client := NewOpenAI(Config{})
	assert.ErrorIs(t, client.CheckCredentials(), ErrMissingAPIKey)

	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestOpenAI_APIErrorIncludesStatusAndMessage(t *testing.T) {
	body := `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`
	srv := newFakeOpenAI(t, http.StatusUnauthorized, body, nil, nil)

	client := NewOpenAI(Config{APIKey: "sk-bad", BaseURL: srv.URL + "/v1", Model: "gpt-4o"})
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Equal(t, "gpt-4o", client.Model())
}
