/*
Package runner runs batches of debates.

It iterates the motions of a batch strictly in order and, for every motion,
holds one debate per stance position so that each stance occupies each seat
once. Debates are handed to a Debater (normally *agora.Engine); progress is
reported through a Reporter.

# Key Components

  - Runner: the batch loop. Fail-fast by default; WithContinueOnError records
    failures and moves on.
  - TextReporter: human-readable progress with terminal colours.
  - JSONReporter: one JSON event per line, for scripting.

# Usage

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithReporter(runner.NewTextReporter(os.Stdout)),
	)

	report, err := r.Run(ctx, engine, catalog.Builtin())
	if err != nil {
		log.Fatal(err)
	}
*/
package runner
