package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/agora"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of agora",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "agora version %s\n", strings.TrimSpace(agora.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
