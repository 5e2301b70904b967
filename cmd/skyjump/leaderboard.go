package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skyjump/internal/config"
	"github.com/cory-johannsen/skyjump/internal/game/session"
)

// errNoHistory is returned for a backend that forgets players on exit.
var errNoHistory = errors.New("the memory backend keeps no records between runs; use postgres or file storage")

func leaderboardCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top players from the configured stats store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n <= 0 {
				return fmt.Errorf("-n must be positive, got %d", n)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runLeaderboard(cmd.Context(), cfg, n, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&n, "n", "n", 10, "number of players to show")
	return cmd
}

// runLeaderboard prints the n best players held by the configured store.
func runLeaderboard(ctx context.Context, cfg config.Config, n int, out io.Writer) error {
	if cfg.Storage.Backend == config.BackendMemory {
		return errNoHistory
	}
	logger, closeLogger, err := provideLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger()

	store, closeStore, err := provideStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	board, ok := store.(session.Leaderboard)
	if !ok {
		return fmt.Errorf("storage backend %q cannot rank players", cfg.Storage.Backend)
	}
	top, err := board.Top(ctx, n)
	if err != nil {
		return fmt.Errorf("reading leaderboard: %w", err)
	}
	newRenderer(out).leaderboard(top)
	return nil
}
