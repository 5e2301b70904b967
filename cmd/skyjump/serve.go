package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skyjump/internal/chat"
	"github.com/cory-johannsen/skyjump/internal/config"
	"github.com/cory-johannsen/skyjump/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the game, reading chat lines from stdin",
		Long: `Run the round clock and the game loop until interrupted.

Chat arrives on stdin, one message per line:

  name[#rrggbb][*]: message

A trailing '*' on the name marks a privileged sender.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cmd.InOrStdin())
		},
	}
}

func runServe(ctx context.Context, cfg config.Config, in io.Reader) error {
	start := time.Now()

	a, cleanup, err := initializeServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	a.logger.Info("starting skyjump",
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("round", cfg.Game.RoundDuration),
		zap.Duration("lobby", cfg.Game.LobbyDuration),
		zap.Int("characters", a.catalog.Size()),
	)

	lc := server.NewLifecycle(a.logger)
	lc.Add("game", server.NewContextService(a.game.Run))
	lc.Add("round-clock", server.NewContextService(func(ctx context.Context) error {
		stop := a.clock.Start()
		defer stop()
		<-ctx.Done()
		return ctx.Err()
	}))
	lc.Add("avatars", server.NewContextService(func(ctx context.Context) error {
		return logAvatarEvents(ctx, a)
	}))
	lc.Add("chat", server.NewContextService(func(ctx context.Context) error {
		return pumpChat(ctx, a, chat.NewLineSource(in, a.logger))
	}))

	a.logger.Info("skyjump ready", zap.Duration("startup", time.Since(start)))
	if err := lc.Run(ctx); err != nil {
		return fmt.Errorf("running skyjump: %w", err)
	}
	return nil
}

// pumpChat feeds chat lines into the game queue. Closed input leaves the game
// running until ctx is cancelled.
func pumpChat(ctx context.Context, a *app, src *chat.LineSource) error {
	events := make(chan chat.Event)
	errCh := make(chan error, 1)
	go func() { errCh <- src.Run(ctx, events) }()

	for {
		select {
		case ev := <-events:
			if !a.game.Submit(ev) {
				a.logger.Warn("chat queue full, dropping message",
					zap.String("sender", ev.SenderID),
					zap.Int64("dropped", a.game.Dropped()),
				)
			}
		case err := <-errCh:
			if err != nil {
				return err
			}
			a.logger.Info("chat input closed")
			<-ctx.Done()
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// logAvatarEvents stands in for the engine binding: it drains the avatar feed
// and logs each change.
func logAvatarEvents(ctx context.Context, a *app) error {
	for {
		select {
		case ev, ok := <-a.feed.Events():
			if !ok {
				return nil
			}
			a.logger.Debug("avatar",
				zap.String("kind", string(ev.Kind)),
				zap.String("player", ev.PlayerID),
				zap.Int("angle", ev.Jump.Angle),
				zap.Int("power", ev.Jump.Power),
				zap.Int("choice", ev.Choice),
				zap.String("color", ev.Color),
			)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
