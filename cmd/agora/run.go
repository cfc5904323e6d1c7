package main

import (
	"github.com/aretw0/agora/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Hold a batch of debates",
	Long: `Holds one debate per stance position for every motion of the catalogue
(or the single motion given with --topic and --stances) and appends each
finished debate to the transcript.`,
	Example: `  agora run --provider scripted --rounds 2
  agora run --topic "Best breakfast" --stances tea,coffee,juice
  agora run --topics motions/ --format redis --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			cfg.Provider = "scripted"
		}

		opts := cli.RunOptions{Stdout: cmd.OutOrStdout()}
		opts.Topic, _ = cmd.Flags().GetString("topic")
		opts.Stances, _ = cmd.Flags().GetStringSlice("stances")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Debug, _ = cmd.Flags().GetBool("debug")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Execute(ctx, cfg, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("provider", "", "Chat provider: openai, gemini or scripted")
	runCmd.Flags().Int("rounds", 0, "Number of rounds per debate")
	runCmd.Flags().String("topics", "", "Motion catalogue file or directory (built-in motions when empty)")
	runCmd.Flags().String("topic", "", "Debate a single motion instead of the catalogue")
	runCmd.Flags().StringSlice("stances", nil, "The three stances of --topic")
	runCmd.Flags().StringSlice("mirror", nil, "Additional transcript formats every debate is appended to")
	runCmd.Flags().Bool("continue-on-error", false, "Keep going when a debate fails")
	runCmd.Flags().String("metrics-addr", "", "Expose Prometheus metrics on this address during the run")
	runCmd.Flags().Bool("dry-run", false, "Use the scripted provider, no model is called")
	runCmd.Flags().Bool("json", false, "Emit NDJSON events instead of text")
	runCmd.Flags().BoolP("quiet", "q", false, "Print nothing but errors")
}
