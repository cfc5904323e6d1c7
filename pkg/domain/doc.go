/*
Package domain contains the core domain models of an agora debate.

It defines the participants, the transcript they build turn by turn, the
ballots they cast and the record persisted once a debate is over. The
package is kept pure and free of I/O, following Hexagonal Architecture
principles: adapters and the runtime depend on it, never the other way
around.

# Key Entities

  - Agent: an immutable seat configuration (instruction, model, display name).
  - Motion: a topic and the three stances debated on it.
  - Transcript: the ordered utterances replayed to every agent on every turn.
  - VoteTally / AgentVoteMap: ordered ballots keyed by exact vote text.
  - Outcome: the winner, or a full tie, computed by Tally.
  - DebateRecord: everything a TranscriptStore persists for one debate.
*/
package domain
