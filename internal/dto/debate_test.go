package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/agora/internal/dto"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecord(t *testing.T) {
	d := dto.FromRecord(ports.ContractRecord("X", 1, "a", "b", "c"))

	assert.Equal(t, 2, d.Number)
	assert.Equal(t, [3]string{"b", "c", "a"}, d.Stances)
	assert.Equal(t, "Tie between: a, b, c", d.Winner)
	assert.True(t, d.Tie)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"votes":{"a":1,"b":1,"c":1}`)
	assert.Contains(t, string(data), `"agent_votes":{"Player 1":"a"`)
}
