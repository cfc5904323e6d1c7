package ports

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractRecord builds a deterministic record for store contract tests.
func ContractRecord(topic string, index int, votes ...string) *domain.DebateRecord {
	stances := []string{"a", "b", "c"}
	rec := &domain.DebateRecord{
		Index:      index,
		Topic:      topic,
		Stances:    domain.SeatStances(stances, index),
		Transcript: domain.Transcript{"Player 1: r1", "Player 2: r2", "Player 3: r3"},
	}
	for i, v := range votes {
		rec.Votes.Add(v)
		rec.AgentVotes.Set(fmt.Sprintf("Player %d", i+1), v)
	}
	rec.Outcome = domain.Tally(rec.Votes)
	return rec
}

// RunTranscriptStoreContract runs a suite of tests to verify that an EditableStore
// implementation adheres to the defined interface contract. The store must be empty.
func RunTranscriptStoreContract(t *testing.T, store EditableStore) {
	ctx := context.Background()

	first := ContractRecord("X", 0, "a", "a", "b")
	second := ContractRecord("X", 1, "a", "b", "c")
	other := ContractRecord("Y", 0, "c", "c", "c")

	t.Run("Append and List", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, first))
		require.NoError(t, store.Append(ctx, second))
		require.NoError(t, store.Append(ctx, other))

		records, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, first, records[0])
		assert.Equal(t, second, records[1])
		assert.Equal(t, other, records[2])
	})

	t.Run("Get", func(t *testing.T) {
		rec, err := store.Get(ctx, domain.Key{Topic: "X", Number: 2})
		require.NoError(t, err)
		assert.Equal(t, second, rec)
		assert.True(t, rec.Outcome.Tie)
		assert.Equal(t, []string{"a", "b", "c"}, rec.Votes.Keys())
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, domain.Key{Topic: "X", Number: 99})
		assert.ErrorIs(t, err, domain.ErrDebateNotFound)

		_, err = store.Get(ctx, domain.Key{Topic: "nope", Number: 1})
		assert.ErrorIs(t, err, domain.ErrDebateNotFound)
	})

	t.Run("Rewrite", func(t *testing.T) {
		records, err := store.List(ctx)
		require.NoError(t, err)

		edited := *records[0]
		var corrected domain.AgentVoteMap
		corrected.Set("Player 1", "b")
		corrected.Set("Player 2", "b")
		corrected.Set("Player 3", "b")
		edited.AgentVotes = corrected
		records[0] = &edited

		require.NoError(t, store.Rewrite(ctx, records))

		got, err := store.Get(ctx, domain.Key{Topic: "X", Number: 1})
		require.NoError(t, err)
		assert.Equal(t, corrected, got.AgentVotes)
		assert.Equal(t, first.Votes, got.Votes, "rewrite only touches what the editor changed")

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("Rewrite Empty", func(t *testing.T) {
		require.NoError(t, store.Rewrite(ctx, nil))
		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}
