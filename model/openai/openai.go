// Package openai implements model.Client over OpenAI's chat API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Client wraps the official openai-go SDK as a completion client.
//
// Transient failures (network errors, 5xx, rate limits) are retried a
// small number of times with backoff; everything else surfaces on the
// first attempt. Safe for concurrent use.
type Client struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
	maxRetries  int
	retryDelay  time.Duration
}

// New creates a Client. The constructor never dials OpenAI; an invalid
// key or unreachable endpoint surfaces from the first Invoke.
func New(apiKey, model string, temperature float64, maxTokens int) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	sdk := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client:      &sdk,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		maxRetries:  3,
		retryDelay:  time.Second,
	}
}

// Invoke implements model.Client.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, err := c.complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !isTransient(err) {
			return "", err
		}
		if attempt >= c.maxRetries {
			break
		}

		select {
		case <-time.After(c.retryDelay * time.Duration(attempt+1)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("openai: failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		MaxTokens: openai.Int(int64(c.maxTokens)),
	}
	if c.temperature > 0 {
		params.Temperature = openai.Float(c.temperature)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	return completion.Choices[0].Message.Content, nil
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "network", "connection", "temporary", "429", "500", "502", "503"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
