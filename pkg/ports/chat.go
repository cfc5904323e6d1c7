package ports

import "context"

// Role tags a message of a chat prompt.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of a chat prompt.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter sends a chat prompt to a model and returns a single completion text.
//
// Implementations must classify failures: rate limiting is wrapped with
// domain.ErrTransient, anything else with domain.ErrUnrecoverable.
type ChatCompleter interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// ChatCompleterFunc adapts a function to the ChatCompleter interface.
type ChatCompleterFunc func(ctx context.Context, model string, messages []Message) (string, error)

func (f ChatCompleterFunc) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	return f(ctx, model, messages)
}
