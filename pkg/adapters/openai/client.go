// Package openai implements ports.ChatCompleter on the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
	goopenai "github.com/sashabaranov/go-openai"
)

// Config holds the connection settings of the client.
type Config struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Organization string `mapstructure:"organization"`
	HTTPClient   *http.Client
}

// Client implements ports.ChatCompleter.
type Client struct {
	api *goopenai.Client
}

// New creates a client. An empty BaseURL targets api.openai.com.
func New(cfg Config) *Client {
	c := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.Organization != "" {
		c.OrgID = cfg.Organization
	}
	if cfg.HTTPClient != nil {
		c.HTTPClient = cfg.HTTPClient
	}
	return &Client{api: goopenai.NewClientWithConfig(c)}
}

// Complete sends the prompt and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, model string, messages []ports.Message) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]goopenai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = goopenai.ChatCompletionMessage{Role: role(m.Role), Content: m.Content}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", domain.ErrUnrecoverable, model)
	}
	return resp.Choices[0].Message.Content, nil
}

func role(r ports.Role) string {
	if r == ports.RoleSystem {
		return goopenai.ChatMessageRoleSystem
	}
	return goopenai.ChatMessageRoleUser
}

// Classify maps an API error onto the error taxonomy: HTTP 429 is transient,
// everything else is unrecoverable. Context errors pass through untouched.
func Classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrUnrecoverable, err)
}
