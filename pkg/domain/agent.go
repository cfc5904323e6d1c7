package domain

import (
	"fmt"
	"strings"
)

// Seats is the number of agents taking part in every debate.
const Seats = 3

// Agent is the fixed configuration of one seat for one debate.
type Agent struct {
	Instruction string `json:"instruction"`
	Model       string `json:"model"`
	Name        string `json:"name"`
}

// Motion is a debate topic together with the stances defended on it.
type Motion struct {
	Topic   string   `json:"topic" yaml:"topic"`
	Stances []string `json:"stances" yaml:"stances"`
}

// Validate checks that the motion has a topic and exactly three distinct, non-empty stances.
func (m Motion) Validate() error {
	if strings.TrimSpace(m.Topic) == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidMotion)
	}
	if len(m.Stances) != Seats {
		return fmt.Errorf("%w: %q has %d stances, want %d", ErrInvalidMotion, m.Topic, len(m.Stances), Seats)
	}
	seen := make(map[string]bool, Seats)
	for _, s := range m.Stances {
		if s == "" {
			return fmt.Errorf("%w: %q has an empty stance", ErrInvalidMotion, m.Topic)
		}
		if seen[s] {
			return fmt.Errorf("%w: %q repeats stance %q", ErrInvalidMotion, m.Topic, s)
		}
		seen[s] = true
	}
	return nil
}

// SeatStances assigns stances to seats as a rotation: seat i defends stances[(i+offset) mod 3].
func SeatStances(stances []string, offset int) [Seats]string {
	var out [Seats]string
	n := len(stances)
	if n == 0 {
		return out
	}
	for i := range out {
		out[i] = stances[((i+offset)%n+n)%n]
	}
	return out
}

// Utterance is one entry of a transcript.
type Utterance string

// Transcript is the ordered sequence of utterances of a single debate.
type Transcript []Utterance

// Append returns a new transcript with u at the end; the receiver is left untouched.
func (t Transcript) Append(u Utterance) Transcript {
	out := make(Transcript, len(t), len(t)+1)
	copy(out, t)
	return append(out, u)
}

// Strings returns the utterances as plain strings.
func (t Transcript) Strings() []string {
	out := make([]string, len(t))
	for i, u := range t {
		out[i] = string(u)
	}
	return out
}

// Join concatenates the transcript with newlines, the form used by file stores.
func (t Transcript) Join() string {
	return strings.Join(t.Strings(), "\n")
}

// SplitTranscript is the inverse of Transcript.Join.
func SplitTranscript(s string) Transcript {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	out := make(Transcript, len(parts))
	for i, p := range parts {
		out[i] = Utterance(p)
	}
	return out
}
