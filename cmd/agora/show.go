package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/agora/internal/cli"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <topic> <number>",
	Short: "Print a recorded debate",
	Long: `Prints one debate of the transcript as markdown (rendered on a terminal),
or as a Mermaid diagram of who argued and voted for what with --mermaid.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[1])
		if err != nil || number < 1 {
			return fmt.Errorf("invalid debate number %q", args[1])
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var opts cli.ShowOptions
		opts.Mermaid, _ = cmd.Flags().GetBool("mermaid")
		opts.Raw, _ = cmd.Flags().GetBool("raw")
		key := domain.Key{Topic: args[0], Number: number}
		return cli.Show(cmd.Context(), cfg, key, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Bool("mermaid", false, "Output a Mermaid diagram (graph LR)")
	showCmd.Flags().Bool("raw", false, "Print plain markdown even on a terminal")
}
