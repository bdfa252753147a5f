package llm

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/mindkeep/mindkeep/pkg/model"
)

// DefaultTimeout bounds every completion round-trip. The chat turn never
// blocks on a hung completion call.
const DefaultTimeout = 10 * time.Second

// Client adapts the Anthropic Messages API to the Completer contract.
type Client struct {
	api     *anthropic.Client
	model   string
	timeout time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithModel overrides the completion model.
func WithModel(m string) Option {
	return func(c *Client) {
		c.model = m
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient wraps an Anthropic API client.
func NewClient(api *anthropic.Client, opts ...Option) *Client {
	c := &Client{
		api:     api,
		model:   "claude-3-5-haiku-latest",
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends a single-prompt completion request and returns the trimmed
// text content. The response is returned as-is beyond trimming; callers own
// any parsing of it.
func (c *Client) Complete(ctx context.Context, req model.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return strings.TrimSpace(text), nil
}

var _ model.Completer = (*Client)(nil)
