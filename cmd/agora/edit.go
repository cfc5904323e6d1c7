package main

import (
	"github.com/aretw0/agora/internal/cli"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the agent votes of recorded debates",
	Long: `Opens an interactive editor on the transcript. Select a debate, press enter
to edit its agent votes as a JSON object, ctrl+s to save and esc to discard.
Only csv and redis transcripts can be edited.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Edit(ctx, cfg, debug)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
