package prompt_test

import (
	"strings"
	"testing"

	"github.com/aretw0/agora/pkg/prompt"
	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	got := prompt.System("Player 2", "Climate Policy", "carbon tax")

	assert.True(t, strings.HasPrefix(got, `You are Player 2, debating with two other players on a tri-party debate topic: "Climate Policy".`))
	assert.Contains(t, got, "You are a proponent of carbon tax.")
	assert.Contains(t, got, `Do not say your own name like "Player 2: ".`)
}

func TestVoting(t *testing.T) {
	got := prompt.Voting([]string{"a", "b", "c"})

	assert.Equal(t, "Please vote for one of the following options: a, b, c. "+
		"Do not output anything other than the option you voted for. "+
		"Your vote is case-sensitive. Do not change the case or formatting of the option you voted for.", got)
}
