// Package llm talks to the upstream text-generation service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = openai.GPT4TurboPreview
)

var ErrMissingAPIKey = errors.New("OpenAI API key not configured")

type Role string

const (
	RoleSystem Role = openai.ChatMessageRoleSystem
	RoleUser   Role = openai.ChatMessageRoleUser
)

type Message struct {
	Role    Role
	Content string
}

type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Completer returns the single text completion for a request.
type Completer interface {
	// CheckCredentials returns ErrMissingAPIKey when no credential is set.
	CheckCredentials() error
	Complete(ctx context.Context, req Request) (string, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout of zero keeps the transport default.
	Timeout time.Duration
}

type OpenAI struct {
	apiKey string
	model  string
	client *openai.Client
}

var _ Completer = (*OpenAI)(nil)

func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAI{
		apiKey: cfg.APIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (c *OpenAI) Model() string {
	return c.model
}

func (c *OpenAI) CheckCredentials() error {
	if strings.TrimSpace(c.apiKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if err := c.CheckCredentials(); err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("OpenAI API error (%d): %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
