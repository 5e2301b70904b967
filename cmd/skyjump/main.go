// Package main provides the skyjump command line. serve runs the chat-driven
// game; the other subcommands are offline tools around it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skyjump/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "skyjump",
		Short:        "Skyjump: a chat-driven jump game",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "configs/dev.yaml", "path to configuration file; empty uses defaults and environment only")

	root.AddCommand(serveCmd(), simCmd(), parseCmd(), migrateCmd(), leaderboardCmd())
	return root
}

// loadConfig reads the file named by the --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
