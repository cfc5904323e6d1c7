// Package gemini implements ports.ChatCompleter on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
	"google.golang.org/genai"
)

// Config holds the connection settings of the client.
type Config struct {
	APIKey string `mapstructure:"api_key"`
}

// Client implements ports.ChatCompleter.
type Client struct {
	client *genai.Client
}

// New creates a client on the Gemini Developer API.
func New(ctx context.Context, cfg Config) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// Request splits a chat prompt into Gemini contents and a config carrying the system instruction.
func Request(messages []ports.Message) ([]*genai.Content, *genai.GenerateContentConfig) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		if m.Role == ports.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}

	cfg := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
	}
	return contents, cfg
}

// Complete sends the prompt and returns the text of the first candidate.
func (c *Client) Complete(ctx context.Context, model string, messages []ports.Message) (string, error) {
	contents, cfg := Request(messages)

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", Classify(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: %s returned no candidates", domain.ErrUnrecoverable, model)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// Classify maps an API error onto the error taxonomy: code 429
// (RESOURCE_EXHAUSTED) is transient, everything else is unrecoverable.
func Classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrUnrecoverable, err)
}
