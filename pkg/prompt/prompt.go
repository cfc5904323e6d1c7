// Package prompt holds the fixed texts sent to debating agents.
package prompt

import (
	"fmt"
	"strings"
)

// System returns the instruction that establishes an agent's role for a debate.
func System(name, topic, stance string) string {
	return fmt.Sprintf(`You are %[1]s, debating with two other players on a tri-party debate topic: "%[2]s".
You are a proponent of %[3]s. Your argument should be in plaintext.
Do not say your own name like "%[1]s: ".`, name, topic, stance)
}

// Voting returns the directive asking an agent to answer with exactly one of the stances.
// Ballots are tallied by exact text, so the directive insists on case and formatting.
func Voting(stances []string) string {
	return fmt.Sprintf("Please vote for one of the following options: %s. "+
		"Do not output anything other than the option you voted for. "+
		"Your vote is case-sensitive. Do not change the case or formatting of the option you voted for.",
		strings.Join(stances, ", "))
}
