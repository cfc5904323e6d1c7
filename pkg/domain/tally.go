package domain

import "strings"

// TiePrefix starts the textual form of a full tie.
const TiePrefix = "Tie between: "

// Outcome is the result of counting a debate's ballots.
type Outcome struct {
	Winner string   `json:"winner,omitempty"`
	Tie    bool     `json:"tie,omitempty"`
	Tied   []string `json:"tied,omitempty"`
}

// String renders the outcome the way it is printed and persisted.
func (o Outcome) String() string {
	if o.Tie {
		return TiePrefix + strings.Join(o.Tied, ", ")
	}
	return o.Winner
}

// ParseOutcome reads a persisted outcome. The tied values are taken from the
// tally since they may themselves contain the separator.
func ParseOutcome(s string, votes VoteTally) Outcome {
	if strings.HasPrefix(s, TiePrefix) {
		return Outcome{Tie: true, Tied: votes.Keys()}
	}
	return Outcome{Winner: s}
}

// Tally decides a debate.
//
// When every distinct vote value has the same count, the debate is a full
// tie among all of them. Otherwise the first-seen value holding the maximum
// count wins outright, even if another value shares that maximum.
// A single distinct value satisfies the first rule: a unanimous vote is a
// tie among that one value.
func Tally(votes VoteTally) Outcome {
	keys := votes.Keys()
	if len(keys) == 0 {
		return Outcome{}
	}

	maxVotes := votes.Count(keys[0])
	for _, k := range keys[1:] {
		maxVotes = max(maxVotes, votes.Count(k))
	}

	allMax := true
	var winners []string
	for _, k := range keys {
		if votes.Count(k) == maxVotes {
			winners = append(winners, k)
		} else {
			allMax = false
		}
	}

	if allMax {
		return Outcome{Tie: true, Tied: keys}
	}
	return Outcome{Winner: winners[0]}
}
