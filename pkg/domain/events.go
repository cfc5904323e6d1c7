package domain

import (
	"context"
	"time"
)

// Phase is a state of the per-debate state machine.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseRounds  Phase = "rounds"
	PhaseVoting  Phase = "voting"
	PhaseTally   Phase = "tally"
	PhasePersist Phase = "persist"
	PhaseDone    Phase = "done"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseEnter EventType = "phase_enter"
	EventUtterance  EventType = "utterance"
	EventVote       EventType = "vote"
	EventRetry      EventType = "retry"
	EventCompletion EventType = "completion"
	EventDebateDone EventType = "debate_done"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Topic     string    `json:"topic,omitempty"`
	Index     int       `json:"index"`
}

// PhaseEvent is emitted when a debate enters a phase.
type PhaseEvent struct {
	EventBase
	Phase   Phase         `json:"phase"`
	Stances [Seats]string `json:"stances,omitempty"`
	Agents  []Agent       `json:"agents,omitempty"`
}

// UtteranceEvent is emitted after an agent spoke during the rounds.
type UtteranceEvent struct {
	EventBase
	Round     int       `json:"round"`
	Seat      int       `json:"seat"`
	Agent     string    `json:"agent"`
	Utterance Utterance `json:"utterance"`
}

// VoteEvent is emitted after an agent cast its ballot.
type VoteEvent struct {
	EventBase
	Seat  int    `json:"seat"`
	Agent string `json:"agent"`
	Vote  string `json:"vote"`
}

// RetryEvent is emitted before sleeping between two attempts of a remote call.
type RetryEvent struct {
	EventBase
	Agent   string        `json:"agent"`
	Model   string        `json:"model"`
	Attempt int           `json:"attempt"`
	Delay   time.Duration `json:"delay"`
	Err     string        `json:"error"`
}

// CompletionEvent is emitted after every remote completion, successful or not.
type CompletionEvent struct {
	EventBase
	Agent    string        `json:"agent"`
	Model    string        `json:"model"`
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// DebateEvent is emitted once a debate record has been produced and persisted.
type DebateEvent struct {
	EventBase
	Record *DebateRecord `json:"record"`
}

// LifecycleHooks defines callbacks for debate observability. Nil hooks are skipped.
type LifecycleHooks struct {
	OnPhaseEnter func(context.Context, *PhaseEvent)
	OnUtterance  func(context.Context, *UtteranceEvent)
	OnVote       func(context.Context, *VoteEvent)
	OnRetry      func(context.Context, *RetryEvent)
	OnCompletion func(context.Context, *CompletionEvent)
	OnDebateDone func(context.Context, *DebateEvent)
}

// MergeHooks fans every event out to all given hooks, in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *PhaseEvent) {
			for _, h := range hooks {
				if h.OnPhaseEnter != nil {
					h.OnPhaseEnter(ctx, e)
				}
			}
		},
		OnUtterance: func(ctx context.Context, e *UtteranceEvent) {
			for _, h := range hooks {
				if h.OnUtterance != nil {
					h.OnUtterance(ctx, e)
				}
			}
		},
		OnVote: func(ctx context.Context, e *VoteEvent) {
			for _, h := range hooks {
				if h.OnVote != nil {
					h.OnVote(ctx, e)
				}
			}
		},
		OnRetry: func(ctx context.Context, e *RetryEvent) {
			for _, h := range hooks {
				if h.OnRetry != nil {
					h.OnRetry(ctx, e)
				}
			}
		},
		OnCompletion: func(ctx context.Context, e *CompletionEvent) {
			for _, h := range hooks {
				if h.OnCompletion != nil {
					h.OnCompletion(ctx, e)
				}
			}
		},
		OnDebateDone: func(ctx context.Context, e *DebateEvent) {
			for _, h := range hooks {
				if h.OnDebateDone != nil {
					h.OnDebateDone(ctx, e)
				}
			}
		},
	}
}
