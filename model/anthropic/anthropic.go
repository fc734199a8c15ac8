// Package anthropic implements model.Client over Anthropic's Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client wraps the official anthropic-sdk-go client as a completion
// client. Safe for concurrent use.
type Client struct {
	client      *anthropic.Client
	model       string
	temperature float64
	maxTokens   int
}

// New creates a Client. The constructor never dials Anthropic; a bad
// key surfaces from the first Invoke.
func New(apiKey, model string, temperature float64, maxTokens int) *Client {
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	sdk := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client:      &sdk,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Invoke implements model.Client.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic: empty response")
	}
	return sb.String(), nil
}
