package memory

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
)

// Call is one request received by a Completer.
type Call struct {
	Model    string
	Messages []ports.Message
}

type reply struct {
	text string
	err  error
}

// Completer is a scripted ports.ChatCompleter: it answers with queued replies
// in order and records every call. Safe for concurrent use.
type Completer struct {
	mu       sync.Mutex
	queue    []reply
	calls    []Call
	fallback func(model string, msgs []ports.Message) (string, error)
}

// NewCompleter creates a Completer answering with replies, in order.
func NewCompleter(replies ...string) *Completer {
	c := &Completer{}
	for _, r := range replies {
		c.Reply(r)
	}
	return c
}

// NewFuncCompleter creates a Completer that computes every reply with fn once the queue is empty.
func NewFuncCompleter(fn func(model string, msgs []ports.Message) (string, error)) *Completer {
	return &Completer{fallback: fn}
}

// Reply queues a successful completion.
func (c *Completer) Reply(text string) *Completer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, reply{text: text})
	return c
}

// Fail queues a failed completion.
func (c *Completer) Fail(err error) *Completer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, reply{err: err})
	return c
}

// Complete implements ports.ChatCompleter.
func (c *Completer) Complete(ctx context.Context, model string, messages []ports.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, Call{Model: model, Messages: append([]ports.Message(nil), messages...)})
	if len(c.queue) > 0 {
		r := c.queue[0]
		c.queue = c.queue[1:]
		return r.text, r.err
	}
	if c.fallback != nil {
		return c.fallback(model, messages)
	}
	return "", fmt.Errorf("%w: scripted completer has no reply left (call %d)", domain.ErrUnrecoverable, len(c.calls))
}

// Calls returns the requests received so far.
func (c *Completer) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

var stancePattern = regexp.MustCompile(`You are a proponent of (.+?)\. Your argument`)

// NewDryRun returns a deterministic Completer that needs no model: every
// agent argues for the stance named in its instruction and votes for it.
func NewDryRun() *Completer {
	return NewFuncCompleter(func(model string, msgs []ports.Message) (string, error) {
		stance := "my position"
		if len(msgs) > 0 {
			if m := stancePattern.FindStringSubmatch(msgs[0].Content); m != nil {
				stance = m[1]
			}
		}
		last := msgs[len(msgs)-1]
		if last.Role == ports.RoleUser && strings.HasPrefix(last.Content, "Please vote") {
			return stance, nil
		}
		turn := len(msgs) - 1
		return fmt.Sprintf("I stand for %s (%s, after %d utterances).", stance, model, turn), nil
	})
}
