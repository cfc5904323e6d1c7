package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// VoteTally counts ballots by their exact text. Keys keep first-seen order,
// which decides the winner when several values share the maximum.
//
// Matching is deliberately literal: "Democracy" and "democracy " are two
// different votes.
type VoteTally struct {
	keys   []string
	counts map[string]int
}

// NewVoteTally builds a tally from ballots in the order they were cast.
func NewVoteTally(ballots ...string) VoteTally {
	var t VoteTally
	for _, b := range ballots {
		t.Add(b)
	}
	return t
}

// Add records one ballot for vote.
func (t *VoteTally) Add(vote string) {
	t.Set(vote, t.Count(vote)+1)
}

// Set overwrites the count of vote, registering it if it was never seen.
func (t *VoteTally) Set(vote string, n int) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[vote]; !ok {
		t.keys = append(t.keys, vote)
	}
	t.counts[vote] = n
}

// Count returns the number of ballots cast for vote.
func (t VoteTally) Count(vote string) int { return t.counts[vote] }

// Keys returns the distinct vote values in first-seen order.
func (t VoteTally) Keys() []string { return append([]string(nil), t.keys...) }

// Len returns the number of distinct vote values.
func (t VoteTally) Len() int { return len(t.keys) }

// Total returns the number of ballots.
func (t VoteTally) Total() int {
	n := 0
	for _, k := range t.keys {
		n += t.counts[k]
	}
	return n
}

func (t VoteTally) String() string {
	b, _ := t.MarshalJSON()
	return string(b)
}

func (t VoteTally) MarshalJSON() ([]byte, error) {
	return marshalOrdered(t.keys, func(k string) any { return t.counts[k] })
}

func (t *VoteTally) UnmarshalJSON(data []byte) error {
	*t = VoteTally{}
	return decodeOrdered(data, func(key string, raw json.RawMessage) error {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("vote %q: %w", key, err)
		}
		t.Set(key, n)
		return nil
	})
}

// AgentVoteMap records which literal vote each agent cast, in seat order.
type AgentVoteMap struct {
	names []string
	votes map[string]string
}

// Set records vote for the agent called name, keeping the agent's original position.
func (m *AgentVoteMap) Set(name, vote string) {
	if m.votes == nil {
		m.votes = make(map[string]string)
	}
	if _, ok := m.votes[name]; !ok {
		m.names = append(m.names, name)
	}
	m.votes[name] = vote
}

// Get returns the vote cast by name.
func (m AgentVoteMap) Get(name string) (string, bool) {
	v, ok := m.votes[name]
	return v, ok
}

// Names returns the agents in the order they voted.
func (m AgentVoteMap) Names() []string { return append([]string(nil), m.names...) }

// Len returns the number of agents that voted.
func (m AgentVoteMap) Len() int { return len(m.names) }

// Tally recounts the ballots of the map.
func (m AgentVoteMap) Tally() VoteTally {
	var t VoteTally
	for _, n := range m.names {
		t.Add(m.votes[n])
	}
	return t
}

func (m AgentVoteMap) String() string {
	b, _ := m.MarshalJSON()
	return string(b)
}

func (m AgentVoteMap) MarshalJSON() ([]byte, error) {
	return marshalOrdered(m.names, func(k string) any { return m.votes[k] })
}

func (m *AgentVoteMap) UnmarshalJSON(data []byte) error {
	*m = AgentVoteMap{}
	return decodeOrdered(data, func(key string, raw json.RawMessage) error {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("agent %q: %w", key, err)
		}
		m.Set(key, v)
		return nil
	})
}

// ParseVoteTally reads a persisted vote tally. Besides JSON it accepts the
// single-quoted mapping form found in older transcript files.
func ParseVoteTally(s string) (VoteTally, error) {
	var t VoteTally
	err := parseLenient(s, &t)
	return t, err
}

// ParseAgentVotes reads a persisted or operator-supplied agent vote map.
// Single quotes are accepted in place of double quotes, and apostrophes
// inside a single-quoted value are kept. A quote directly followed by a
// comma or colon still ends the value, so such text needs double quotes.
func ParseAgentVotes(s string) (AgentVoteMap, error) {
	var m AgentVoteMap
	if err := parseLenient(s, &m); err != nil {
		return AgentVoteMap{}, fmt.Errorf("%w: %w", ErrInvalidAgentVotes, err)
	}
	return m, nil
}

func parseLenient(s string, v json.Unmarshaler) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	err := v.UnmarshalJSON([]byte(s))
	if err == nil {
		return nil
	}
	if !strings.Contains(s, "'") {
		return err
	}
	return v.UnmarshalJSON([]byte(requote(s)))
}

// requote rewrites single-quoted keys and values as JSON strings. A single
// quote only closes a string when the next non-blank character is a
// delimiter, so apostrophes inside words survive. Double-quoted strings are
// copied as they are.
func requote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch s[i] {
		case '"':
			end := doubleQuotedEnd(s, i)
			b.WriteString(s[i:end])
			i = end
		case '\'':
			i = writeSingleQuoted(&b, s, i)
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// doubleQuotedEnd returns the index just past the double-quoted string opening at i.
func doubleQuotedEnd(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

// writeSingleQuoted writes the single-quoted string opening at i as a JSON
// string and returns the index just past its closing quote. An unterminated
// string is left open for the decoder to reject.
func writeSingleQuoted(b *strings.Builder, s string, i int) int {
	b.WriteByte('"')
	for j := i + 1; j < len(s); j++ {
		switch c := s[j]; {
		case c == '\\' && j+1 < len(s):
			j++
			if s[j] != '\'' {
				b.WriteByte('\\')
			}
			b.WriteByte(s[j])
		case c == '"':
			b.WriteString(`\"`)
		case c == '\'' && closesString(s[j+1:]):
			b.WriteByte('"')
			return j + 1
		default:
			b.WriteByte(c)
		}
	}
	return len(s)
}

func closesString(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	return rest == "" || strings.IndexByte(":,}]", rest[0]) >= 0
}

func marshalOrdered(keys []string, value func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(value(k))
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteString(": ")
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeOrdered(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}
