package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/aretw0/agora/pkg/prompt"
)

// DefaultRounds is the number of speaking rounds of a debate.
const DefaultRounds = 5

// Seat is the fixed part of an agent: who sits there and which model speaks for it.
type Seat struct {
	Name  string `json:"name" mapstructure:"name"`
	Model string `json:"model" mapstructure:"model"`
}

// DefaultSeats puts a weaker model in the first seat and two stronger ones against it.
func DefaultSeats() [domain.Seats]Seat {
	return [domain.Seats]Seat{
		{Name: "Player 1", Model: "gpt-4o-mini"},
		{Name: "Player 2", Model: "gpt-4o"},
		{Name: "Player 3", Model: "gpt-4o"},
	}
}

// Generator produces one utterance; *generator.Generator is the production implementation.
type Generator interface {
	Generate(ctx context.Context, agent domain.Agent, transcript domain.Transcript, directive string) (domain.Utterance, error)
}

// Orchestrator drives a single debate through its phases.
// It holds no per-debate state and may run several debates in sequence.
type Orchestrator struct {
	gen         Generator
	store       ports.TranscriptStore
	rounds      int
	seats       [domain.Seats]Seat
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	instruction func(name, topic, stance string) string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore sets where finished debates are persisted. Without a store PERSIST is a no-op.
func WithStore(s ports.TranscriptStore) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithRounds sets the number of speaking rounds.
func WithRounds(n int) Option {
	return func(o *Orchestrator) {
		o.rounds = n
	}
}

// WithSeats sets the names and models of the three seats.
func WithSeats(seats [domain.Seats]Seat) Option {
	return func(o *Orchestrator) {
		o.seats = seats
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithInstruction replaces the system prompt template.
func WithInstruction(fn func(name, topic, stance string) string) Option {
	return func(o *Orchestrator) {
		o.instruction = fn
	}
}

// NewOrchestrator creates an orchestrator speaking through gen.
func NewOrchestrator(gen Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:         gen,
		rounds:      DefaultRounds,
		seats:       DefaultSeats(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		instruction: prompt.System,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Rounds returns the configured number of speaking rounds.
func (o *Orchestrator) Rounds() int { return o.rounds }

// debate is the working state of one Run.
type debate struct {
	motion    domain.Motion
	index     int
	directive string

	stances    [domain.Seats]string
	agents     [domain.Seats]domain.Agent
	transcript domain.Transcript
	votes      domain.VoteTally
	agentVotes domain.AgentVoteMap
	outcome    domain.Outcome
	record     *domain.DebateRecord
}

// Run holds debate number index+1 on motion.
//
// The index doubles as the rotation offset: seat i defends
// motion.Stances[(i+index) mod 3]. An empty directive is replaced by the
// standard voting directive for the motion's stances.
//
// Any failure aborts the debate before anything is persisted.
func (o *Orchestrator) Run(ctx context.Context, motion domain.Motion, index int, directive string) (*domain.DebateRecord, error) {
	if directive == "" {
		directive = prompt.Voting(motion.Stances)
	}
	d := &debate{motion: motion, index: index, directive: directive}

	phase := domain.PhaseSetup
	for {
		o.enter(ctx, d, phase)
		if phase == domain.PhaseDone {
			return d.record, nil
		}

		next, err := o.step(ctx, d, phase)
		if err != nil {
			o.logger.ErrorContext(ctx, "debate aborted",
				"topic", motion.Topic, "debate", index+1, "phase", phase, "error", err)
			return nil, fmt.Errorf("debate %d on %q failed during %s: %w", index+1, motion.Topic, phase, err)
		}
		phase = next
	}
}

func (o *Orchestrator) step(ctx context.Context, d *debate, phase domain.Phase) (domain.Phase, error) {
	switch phase {
	case domain.PhaseSetup:
		return domain.PhaseRounds, o.setup(d)
	case domain.PhaseRounds:
		return domain.PhaseVoting, o.speak(ctx, d)
	case domain.PhaseVoting:
		return domain.PhaseTally, o.vote(ctx, d)
	case domain.PhaseTally:
		d.outcome = domain.Tally(d.votes)
		d.record = &domain.DebateRecord{
			Index:      d.index,
			Topic:      d.motion.Topic,
			Stances:    d.stances,
			Transcript: d.transcript,
			Votes:      d.votes,
			AgentVotes: d.agentVotes,
			Outcome:    d.outcome,
		}
		return domain.PhasePersist, nil
	case domain.PhasePersist:
		return domain.PhaseDone, o.persist(ctx, d)
	default:
		return domain.PhaseDone, fmt.Errorf("unknown phase %q", phase)
	}
}

func (o *Orchestrator) setup(d *debate) error {
	if err := d.motion.Validate(); err != nil {
		return err
	}
	if o.rounds < 0 {
		return fmt.Errorf("negative number of rounds: %d", o.rounds)
	}
	d.stances = domain.SeatStances(d.motion.Stances, d.index)
	for i, seat := range o.seats {
		d.agents[i] = domain.Agent{
			Instruction: o.instruction(seat.Name, d.motion.Topic, d.stances[i]),
			Model:       seat.Model,
			Name:        seat.Name,
		}
	}
	return nil
}

func (o *Orchestrator) speak(ctx context.Context, d *debate) error {
	for round := 0; round < o.rounds; round++ {
		for seat, agent := range d.agents {
			u, err := o.gen.Generate(ctx, agent, d.transcript, "")
			if err != nil {
				return fmt.Errorf("%s in round %d: %w", agent.Name, round+1, err)
			}
			d.transcript = d.transcript.Append(u)

			if o.hooks.OnUtterance != nil {
				o.hooks.OnUtterance(ctx, &domain.UtteranceEvent{
					EventBase: o.base(d, domain.EventUtterance),
					Round:     round + 1,
					Seat:      seat,
					Agent:     agent.Name,
					Utterance: u,
				})
			}
		}
	}
	return nil
}

func (o *Orchestrator) vote(ctx context.Context, d *debate) error {
	for seat, agent := range d.agents {
		ballot, err := o.gen.Generate(ctx, agent, d.transcript, d.directive)
		if err != nil {
			return fmt.Errorf("%s while voting: %w", agent.Name, err)
		}
		d.votes.Add(string(ballot))
		d.agentVotes.Set(agent.Name, string(ballot))

		o.logger.DebugContext(ctx, "vote cast", "agent", agent.Name, "vote", string(ballot))
		if o.hooks.OnVote != nil {
			o.hooks.OnVote(ctx, &domain.VoteEvent{
				EventBase: o.base(d, domain.EventVote),
				Seat:      seat,
				Agent:     agent.Name,
				Vote:      string(ballot),
			})
		}
	}
	return nil
}

func (o *Orchestrator) persist(ctx context.Context, d *debate) error {
	if o.store != nil {
		if err := o.store.Append(ctx, d.record); err != nil {
			return err
		}
	}
	o.logger.InfoContext(ctx, "debate finished",
		"topic", d.motion.Topic, "debate", d.index+1, "votes", d.votes.String(), "outcome", d.outcome.String())
	if o.hooks.OnDebateDone != nil {
		o.hooks.OnDebateDone(ctx, &domain.DebateEvent{
			EventBase: o.base(d, domain.EventDebateDone),
			Record:    d.record,
		})
	}
	return nil
}

func (o *Orchestrator) enter(ctx context.Context, d *debate, phase domain.Phase) {
	o.logger.DebugContext(ctx, "phase", "topic", d.motion.Topic, "debate", d.index+1, "phase", phase)
	if o.hooks.OnPhaseEnter == nil {
		return
	}
	e := &domain.PhaseEvent{
		EventBase: o.base(d, domain.EventPhaseEnter),
		Phase:     phase,
	}
	if phase != domain.PhaseSetup {
		e.Stances = d.stances
		e.Agents = append([]domain.Agent(nil), d.agents[:]...)
	}
	o.hooks.OnPhaseEnter(ctx, e)
}

func (o *Orchestrator) base(d *debate, t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, Topic: d.motion.Topic, Index: d.index}
}
