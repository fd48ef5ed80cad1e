// Package openai provides an LLM client backed by the OpenAI chat completions API
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"

	"github.com/bobmcallan/peerscope/internal/common"
	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 5 * 1024
)

// Client implements the LLMClient interface
type Client struct {
	client       openai.Client
	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int64
	logger       *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithSystemPrompt sets the system message sent with every request
func WithSystemPrompt(prompt string) ClientOption {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithMaxTokens caps the response length
func WithMaxTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = int64(n)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new OpenAI client. Extra request options are passed to
// the SDK, e.g. option.WithBaseURL for compatible endpoints.
func NewClient(apiKey string, requestOpts []option.RequestOption, opts ...ClientOption) *Client {
	sdkOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, requestOpts...)

	c := &Client{
		client:    openai.NewClient(sdkOpts...),
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		logger:    common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return common.ProviderOpenAI
}

// Model returns the configured model
func (c *Client) Model() string {
	return c.model
}

// GenerateContent sends the prompt as a single user message
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("prompt_chars", len(prompt)).Msg("Generating content")

	resp, err := c.client.Chat.Completions.New(ctx, c.params(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", models.ErrEmptyResponse
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", models.ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) params(prompt string) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if c.systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(c.systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: param.NewOpt(c.temperature),
		MaxTokens:   param.NewOpt(c.maxTokens),
	}
}

// Ensure Client implements LLMClient
var _ interfaces.LLMClient = (*Client)(nil)
