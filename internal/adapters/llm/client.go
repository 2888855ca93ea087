// Package llm talks to an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"hk_itinerary/internal/adapters/observability"
	"hk_itinerary/internal/domain"
)

type Client struct {
	client openai.Client
	model  string
}

// New builds a client for baseURL. The SDK's own retries are disabled: a
// failed call is reported once and the caller decides what to do.
func New(baseURL, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &Client{client: openai.NewClient(opts...), model: model}, nil
}

func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(0.3),
		MaxCompletionTokens: openai.Int(4096),
	})
	if err != nil {
		var apiErr *openai.Error
		status := 0
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		observability.ObserveExternal("llm", "chat_completions", status, time.Since(start))
		return "", classify(err, status)
	}
	observability.ObserveExternal("llm", "chat_completions", http.StatusOK, time.Since(start))

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domain.NewSourceError(domain.SourceAI, domain.KindInvalidResponse, errors.New("empty completion"))
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error, status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return domain.NewSourceError(domain.SourceAI, domain.KindRateLimited, err)
	case status >= 500:
		return domain.NewSourceError(domain.SourceAI, domain.KindUnreachable, err)
	case status >= 400:
		return domain.NewSourceError(domain.SourceAI, domain.KindInvalidResponse, err)
	}
	return domain.AsSourceError(domain.SourceAI, err)
}
