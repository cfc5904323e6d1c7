package dto

import (
	"github.com/aretw0/agora/pkg/domain"
)

// Debate is the wire form of a debate record, shared by the HTTP and MCP surfaces.
// Field names follow the columns of the tabular transcript.
type Debate struct {
	Number       int                  `json:"number"`
	Topic        string               `json:"topic"`
	Stances      [domain.Seats]string `json:"stances"`
	Conversation []string             `json:"conversation"`
	Votes        domain.VoteTally     `json:"votes"`
	AgentVotes   domain.AgentVoteMap  `json:"agent_votes"`
	Winner       string               `json:"winner"`
	Tie          bool                 `json:"tie,omitempty"`
}

// Topic summarises the debates recorded for one topic.
type Topic struct {
	Topic   string `json:"topic"`
	Debates []int  `json:"debates"`
}

// FromRecord maps a domain record to its wire form.
func FromRecord(r *domain.DebateRecord) Debate {
	return Debate{
		Number:       r.Number(),
		Topic:        r.Topic,
		Stances:      r.Stances,
		Conversation: r.Transcript.Strings(),
		Votes:        r.Votes,
		AgentVotes:   r.AgentVotes,
		Winner:       r.Outcome.String(),
		Tie:          r.Outcome.Tie,
	}
}

// FromRecords maps a slice of records.
func FromRecords(records []*domain.DebateRecord) []Debate {
	out := make([]Debate, len(records))
	for i, r := range records {
		out[i] = FromRecord(r)
	}
	return out
}
