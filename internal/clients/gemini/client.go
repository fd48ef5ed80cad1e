// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/peerscope/internal/common"
	"github.com/bobmcallan/peerscope/internal/interfaces"
	"github.com/bobmcallan/peerscope/internal/models"
)

const (
	DefaultModel           = "gemini-2.0-flash"
	DefaultMaxOutputTokens = 5 * 1024
)

// Client implements the LLMClient interface
type Client struct {
	client          *genai.Client
	model           string
	systemPrompt    string
	temperature     float32
	maxOutputTokens int32
	logger          *common.Logger
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

// WithSystemPrompt sets the system instruction sent with every request
func WithSystemPrompt(prompt string) ClientOption {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.temperature = float32(t)
	}
}

// WithMaxOutputTokens caps the response length
func WithMaxOutputTokens(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxOutputTokens = int32(n)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client. baseURL is optional and points the
// SDK at an alternative endpoint.
func NewClient(ctx context.Context, apiKey, baseURL string, opts ...ClientOption) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	genaiClient, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:          genaiClient,
		model:           DefaultModel,
		maxOutputTokens: DefaultMaxOutputTokens,
		logger:          common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return common.ProviderGemini
}

// Model returns the configured model
func (c *Client) Model() string {
	return c.model
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("prompt_chars", len(prompt)).Msg("Generating content")

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.generateConfig())
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

func (c *Client) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxOutputTokens,
	}
	if c.systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(c.systemPrompt, genai.RoleUser)
	}
	return cfg
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", models.ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", models.ErrEmptyResponse
	}
	return sb.String(), nil
}

// Ensure Client implements LLMClient
var _ interfaces.LLMClient = (*Client)(nil)
