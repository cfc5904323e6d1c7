package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// RecordMarkdown formats a debate record for the `show` command.
func RecordMarkdown(rec *domain.DebateRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Debate %d: %s\n\n", rec.Number(), rec.Topic)

	sb.WriteString("| Seat | Stance | Vote |\n|---|---|---|\n")
	names := rec.AgentVotes.Names()
	for i, stance := range rec.Stances {
		name := fmt.Sprintf("Player %d", i+1)
		if i < len(names) {
			name = names[i]
		}
		vote, _ := rec.AgentVotes.Get(name)
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", name, stance, vote)
	}

	sb.WriteString("\n## Conversation\n\n")
	for _, u := range rec.Transcript {
		fmt.Fprintf(&sb, "> %s\n>\n", strings.ReplaceAll(string(u), "\n", "\n> "))
	}

	fmt.Fprintf(&sb, "\n**Votes:** `%s`\n\n", rec.Votes.String())
	if rec.Outcome.Tie {
		fmt.Fprintf(&sb, "**%s**\n", rec.Outcome.String())
	} else {
		fmt.Fprintf(&sb, "**Winner:** %s\n", rec.Outcome.String())
	}
	return sb.String()
}
