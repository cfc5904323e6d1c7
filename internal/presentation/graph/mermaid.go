package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/agora/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of one debate:
// - Seats: ((Circle)), linked by a dotted edge to the stance they argued
// - Stances: [Rectangle]
// - Ballots: solid edges from the voting seat to the stance it voted for
// Ballots for text that is not one of the stances get a [/Parallelogram/] of their own.
// The winning stance, or every tied stance, is highlighted.
func GenerateMermaid(rec *domain.DebateRecord) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	stanceIDs := make(map[string]string)
	for i, stance := range rec.Stances {
		id := fmt.Sprintf("stance%d", i+1)
		stanceIDs[stance] = id
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, escapeLabel(stance)))
	}

	// Agent votes carry the seat names; fall back to positional names.
	names := rec.AgentVotes.Names()
	for i, stance := range rec.Stances {
		name := fmt.Sprintf("Player %d", i+1)
		if i < len(names) {
			name = names[i]
		}
		seatID := fmt.Sprintf("seat%d", i+1)
		sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", seatID, escapeLabel(name)))
		sb.WriteString(fmt.Sprintf("    %s -. argues .-> %s\n", seatID, stanceIDs[stance]))
	}

	others := 0
	for i, name := range names {
		vote, _ := rec.AgentVotes.Get(name)
		target, ok := stanceIDs[vote]
		if !ok {
			others++
			target = fmt.Sprintf("other%d", others)
			stanceIDs[vote] = target
			sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", target, escapeLabel(vote)))
		}
		if i < domain.Seats {
			sb.WriteString(fmt.Sprintf("    seat%d -- votes --> %s\n", i+1, target))
		}
	}

	winners := rec.Outcome.Tied
	if !rec.Outcome.Tie && rec.Outcome.Winner != "" {
		winners = []string{rec.Outcome.Winner}
	}
	if len(winners) > 0 {
		sb.WriteString("\n    %% Outcome\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef winner fill:#c8e6c9,stroke:#2e7d32,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef tied fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		class := "winner"
		if rec.Outcome.Tie {
			class = "tied"
		}
		for _, w := range winners {
			if id, ok := stanceIDs[w]; ok {
				sb.WriteString(fmt.Sprintf("    class %s %s;\n", id, class))
			}
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
