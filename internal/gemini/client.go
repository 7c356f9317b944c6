package gemini

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
)

// Config describes how to reach the OpenAI-compatible Gemini endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client generates text through Gemini's OpenAI-compatible chat completions API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new Gemini client. The caller decides whether a key is present.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if len(cfg.APIKey) > 8 {
		log.Info().Str("key_prefix", cfg.APIKey[:8]+"...").Msg("gemini API key loaded")
	} else {
		log.Error().Msg("gemini API key is too short")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Generate sends the prompt as a single user message and waits for the full answer.
// An answer without choices is reported as empty text, not as an error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
