package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/agora/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: "Agora holds debates between three language models",
	Long: `Agora seats three language models around a motion, lets them argue their
stances for a number of rounds, asks each of them for a vote and records the
outcome in a transcript you can inspect and edit afterwards.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// configFlags maps command flags to configuration keys.
var configFlags = map[string]string{
	"provider":          "provider",
	"rounds":            "rounds",
	"topics":            "topics",
	"format":            "format",
	"transcript-file":   "transcript_file",
	"mirror":            "mirror",
	"continue-on-error": "continue_on_error",
	"metrics-addr":      "metrics.addr",
	"log-level":         "log.level",
}

// loadConfig layers the flags of cmd on top of agora.yaml and the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()
	v := loader.Viper()
	for flag, key := range configFlags {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	path, _ := cmd.Flags().GetString("config")
	return loader.Load(path)
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./agora.yaml when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("format", "", "Transcript store: csv, text or redis")
	rootCmd.PersistentFlags().String("transcript-file", "", "Transcript file of the csv and text stores")
}
