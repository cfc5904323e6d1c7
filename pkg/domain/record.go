package domain

// DebateRecord is the immutable result of one debate, as handed to a TranscriptStore.
type DebateRecord struct {
	// Index is zero-based; stores persist Index+1 as the debate number.
	Index      int           `json:"index"`
	Topic      string        `json:"topic"`
	Stances    [Seats]string `json:"stances"`
	Transcript Transcript    `json:"transcript"`
	Votes      VoteTally     `json:"votes"`
	AgentVotes AgentVoteMap  `json:"agent_votes"`
	Outcome    Outcome       `json:"outcome"`
}

// Number is the one-based debate number shown to operators.
func (r DebateRecord) Number() int { return r.Index + 1 }

// Key identifies a record within a store: debate numbers restart for every topic.
type Key struct {
	Topic  string `json:"topic"`
	Number int    `json:"number"`
}

// Key returns the record's store key.
func (r DebateRecord) Key() Key { return Key{Topic: r.Topic, Number: r.Number()} }
