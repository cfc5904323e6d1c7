/*
Package agora runs scripted debates between three language-model agents.

Each debate seats three agents on a motion, every agent defending a different
stance. The agents speak in a fixed order for a configured number of rounds,
every turn replaying the whole transcript as context, then each agent votes
for one stance. Ballots are tallied by exact text and one record per debate
is appended to a transcript store.

# Concept

The Engine is a thin facade over the debate state machine
(setup, rounds, voting, tally, persist, done). The model provider and the
transcript store are ports, so the same engine runs against OpenAI, Gemini
or a scripted completer, and persists to CSV, plain text, Redis or memory.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/agora"
		"github.com/aretw0/agora/pkg/adapters/file"
		"github.com/aretw0/agora/pkg/adapters/openai"
		"github.com/aretw0/agora/pkg/domain"
	)

	func main() {
		store := file.NewCSVStore("debate.csv")
		eng, err := agora.New(openai.New(openai.Config{}), agora.WithStore(store))
		if err != nil {
			log.Fatal(err)
		}

		motion := domain.Motion{
			Topic:   "Climate Policy: Carbon Tax vs. Cap-and-Trade vs. Direct Regulation",
			Stances: []string{"carbon tax", "cap-and-trade", "direct regulation"},
		}
		rec, err := eng.Debate(context.Background(), motion, 0, "")
		if err != nil {
			log.Fatal(err)
		}
		log.Println("Outcome:", rec.Outcome)
	}

Batches of motions are run with pkg/runner.
*/
package agora
