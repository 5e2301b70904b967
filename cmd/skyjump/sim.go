package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skyjump/internal/chat"
	"github.com/cory-johannsen/skyjump/internal/config"
	"github.com/cory-johannsen/skyjump/internal/game/round"
)

func simCmd() *cobra.Command {
	var (
		input    string
		duration time.Duration
		cooldown time.Duration
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Play a chat transcript through one round and render the result",
		Long: `Play chat lines (name[#rrggbb][*]: message) through a single round
with an in-memory roster. Jumping opens immediately; the round ends
when the transcript does, and the final standings are printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = simConfig(cfg, duration, cooldown, verbose)
			if err := cfg.Validate(); err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("opening transcript: %w", err)
				}
				defer f.Close()
				in = f
			}
			return runSim(cmd.Context(), cfg, in, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "transcript file; stdin when empty")
	cmd.Flags().DurationVar(&duration, "round", time.Hour, "round length")
	cmd.Flags().DurationVar(&cooldown, "cooldown", 0, "minimum time between two jumps of one player")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	return cmd
}

// simConfig adapts cfg for a local transcript: no persistence, no lobby, and
// no throttling.
func simConfig(cfg config.Config, duration, cooldown time.Duration, verbose bool) config.Config {
	cfg.Storage.Backend = config.BackendMemory
	cfg.Game.LobbyDuration = 0
	cfg.Game.RoundDuration = duration
	cfg.Game.JumpCooldown = cooldown
	cfg.Chat.RatePerSecond = 0
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "warn"
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg
}

// runSim plays every line of in through the game synchronously.
func runSim(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	r := newRenderer(out)
	a, cleanup, err := initializeSim(ctx, cfg, r)
	if err != nil {
		return err
	}
	defer cleanup()
	r.attach(a)

	rounds := make(chan round.Event, 16)
	a.clock.Subscribe(rounds)
	defer a.clock.Unsubscribe(rounds)

	drainRounds := func() {
		for {
			select {
			case ev := <-rounds:
				a.game.HandleRound(ctx, ev)
			default:
				return
			}
		}
	}
	step := func() {
		a.clock.Advance()
		drainRounds()
	}

	events := make(chan chat.Event)
	errCh := make(chan error, 1)
	go func() {
		errCh <- chat.NewLineSource(in, a.logger).Run(ctx, events)
		close(events)
	}()

	step()
	for ev := range events {
		step()
		a.game.Handle(ctx, ev)
		r.flush()
	}
	if err := <-errCh; err != nil {
		return err
	}

	a.clock.EndRound()
	drainRounds()
	r.standings()
	return nil
}
