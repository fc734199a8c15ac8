// Package google implements model.Client over Google's Gemini API.
package google

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client wraps the generative-ai-go SDK as a completion client.
//
// The genai SDK requires a context to construct its client, so the
// underlying connection is created lazily on the first Invoke. This
// matches the trainer's contract: constructors never dial the vendor,
// and the first failing Invoke surfaces connectivity problems.
type Client struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int

	once    sync.Once
	client  *genai.Client
	initErr error
}

// New creates a Client with deferred connection setup.
func New(apiKey, model string, temperature float64, maxTokens int) *Client {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Client{
		apiKey:      apiKey,
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

	c.once.Do(func() {
		c.client, c.initErr = genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	})
	if c.initErr != nil {
		return "", c.initErr
	}

	gm := c.client.GenerativeModel(c.model)
	if c.temperature > 0 {
		temp := float32(c.temperature)
		gm.Temperature = &temp
	}
	maxTokens := int32(c.maxTokens)
	gm.MaxOutputTokens = &maxTokens

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("google: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("google: no text content in response")
	}
	return sb.String(), nil
}

// Close releases the underlying client, if it was ever created.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
