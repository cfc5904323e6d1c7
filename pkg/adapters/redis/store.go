package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/mitchellh/mapstructure"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "agora:transcript:"

const lockTTL = 30 * time.Second

// Store implements ports.EditableStore using Redis.
//
// Every debate is a hash holding the same columns as the tabular transcript.
// A sorted set scored by a monotonically increasing sequence keeps append
// order, and a lookup hash maps "topic#number" to the debate's hash.
type Store struct {
	client *backend.Client
	prefix string
	locker ports.DistributedLocker
}

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLocker serialises appends and rewrites across processes sharing the prefix.
func WithLocker(l ports.DistributedLocker) Option {
	return func(s *Store) {
		s.locker = l
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// row is the hash layout of one debate.
type row struct {
	Number       int    `mapstructure:"number"`
	Topic        string `mapstructure:"topic"`
	Stance1      string `mapstructure:"stance_1"`
	Stance2      string `mapstructure:"stance_2"`
	Stance3      string `mapstructure:"stance_3"`
	Conversation string `mapstructure:"conversation"`
	Votes        string `mapstructure:"votes"`
	AgentVotes   string `mapstructure:"agent_votes"`
	Winner       string `mapstructure:"winner"`
}

func toFields(r *domain.DebateRecord) map[string]any {
	return map[string]any{
		"number":       r.Number(),
		"topic":        r.Topic,
		"stance_1":     r.Stances[0],
		"stance_2":     r.Stances[1],
		"stance_3":     r.Stances[2],
		"conversation": r.Transcript.Join(),
		"votes":        r.Votes.String(),
		"agent_votes":  r.AgentVotes.String(),
		"winner":       r.Outcome.String(),
	}
}

func fromFields(fields map[string]string) (*domain.DebateRecord, error) {
	var raw row
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, fmt.Errorf("failed to decode debate hash: %w", err)
	}

	votes, err := domain.ParseVoteTally(raw.Votes)
	if err != nil {
		return nil, fmt.Errorf("invalid votes: %w", err)
	}
	agentVotes, err := domain.ParseAgentVotes(raw.AgentVotes)
	if err != nil {
		return nil, err
	}
	return &domain.DebateRecord{
		Index:      raw.Number - 1,
		Topic:      raw.Topic,
		Stances:    [domain.Seats]string{raw.Stance1, raw.Stance2, raw.Stance3},
		Transcript: domain.SplitTranscript(raw.Conversation),
		Votes:      votes,
		AgentVotes: agentVotes,
		Outcome:    domain.ParseOutcome(raw.Winner, votes),
	}, nil
}

func (s *Store) indexKey() string  { return s.prefix + "index" }
func (s *Store) lookupKey() string { return s.prefix + "lookup" }
func (s *Store) seqKey() string    { return s.prefix + "seq" }
func (s *Store) debateKey(seq int64) string {
	return s.prefix + "debate:" + strconv.FormatInt(seq, 10)
}

func lookupField(k domain.Key) string {
	return k.Topic + "#" + strconv.Itoa(k.Number)
}

func (s *Store) lock(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	unlock, err := s.locker.Lock(ctx, s.prefix, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return func() { _ = unlock(context.WithoutCancel(ctx)) }, nil
}

// Append persists one debate.
func (s *Store) Append(ctx context.Context, record *domain.DebateRecord) error {
	release, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to allocate sequence: %w", domain.ErrPersistence, err)
	}

	pipe := s.client.TxPipeline()
	s.queueWrite(ctx, pipe, seq, record)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to save to redis: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *Store) queueWrite(ctx context.Context, pipe backend.Pipeliner, seq int64, record *domain.DebateRecord) {
	key := s.debateKey(seq)
	pipe.HSet(ctx, key, toFields(record))
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: float64(seq), Member: key})
	pipe.HSet(ctx, s.lookupKey(), lookupField(record.Key()), key)
}

// List returns every debate in append order.
func (s *Store) List(ctx context.Context) ([]*domain.DebateRecord, error) {
	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list debates: %w", domain.ErrPersistence, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*backend.MapStringStringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to read debates: %w", domain.ErrPersistence, err)
	}

	records := make([]*domain.DebateRecord, 0, len(keys))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		rec, err := fromFields(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrPersistence, keys[i], err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns the debate of the given topic and number.
func (s *Store) Get(ctx context.Context, key domain.Key) (*domain.DebateRecord, error) {
	hashKey, err := s.client.HGet(ctx, s.lookupKey(), lookupField(key)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, fmt.Errorf("%w: %q #%d", domain.ErrDebateNotFound, key.Topic, key.Number)
		}
		return nil, fmt.Errorf("%w: failed to look up debate: %w", domain.ErrPersistence, err)
	}

	fields, err := s.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read debate: %w", domain.ErrPersistence, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %q #%d", domain.ErrDebateNotFound, key.Topic, key.Number)
	}
	rec, err := fromFields(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return rec, nil
}

// Rewrite replaces every stored debate in a single transaction.
func (s *Store) Rewrite(ctx context.Context, records []*domain.DebateRecord) error {
	release, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	old, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to list debates: %w", domain.ErrPersistence, err)
	}

	var last int64
	if len(records) > 0 {
		last, err = s.client.IncrBy(ctx, s.seqKey(), int64(len(records))).Result()
		if err != nil {
			return fmt.Errorf("%w: failed to allocate sequence: %w", domain.ErrPersistence, err)
		}
	}
	first := last - int64(len(records)) + 1

	pipe := s.client.TxPipeline()
	if len(old) > 0 {
		pipe.Del(ctx, old...)
	}
	pipe.Del(ctx, s.indexKey(), s.lookupKey())
	for i, r := range records {
		s.queueWrite(ctx, pipe, first+int64(i), r)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to rewrite redis transcript: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
