package main

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skyjump/internal/config"
	"github.com/cory-johannsen/skyjump/internal/game/character"
	"github.com/cory-johannsen/skyjump/internal/game/command"
	"github.com/cory-johannsen/skyjump/internal/game/rng"
	"github.com/cory-johannsen/skyjump/internal/game/round"
	"github.com/cory-johannsen/skyjump/internal/game/session"
	"github.com/cory-johannsen/skyjump/internal/gameserver"
	"github.com/cory-johannsen/skyjump/internal/observability"
	"github.com/cory-johannsen/skyjump/internal/scripting"
	"github.com/cory-johannsen/skyjump/internal/storage/postgres"
	"github.com/cory-johannsen/skyjump/internal/storage/statsfile"
)

// app is the fully wired game.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	roster  *session.Manager
	clock   *round.Clock
	catalog *character.Catalog
	feed    *gameserver.Feed
	game    *gameserver.Game
}

// gameSet provides everything but the Announcer.
var gameSet = wire.NewSet(
	provideLogger,
	provideStore,
	session.NewManager,
	provideClock,
	command.DefaultRegistry,
	provideParser,
	rng.NewCryptoSource,
	provideCatalog,
	provideDispatcher,
	provideFeed,
	provideClimber,
	provideHooks,
	provideGame,
	wire.Struct(new(app), "*"),
)

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging, "skyjump")
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// provideStore opens the configured stats backend.
func provideStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (session.StatsStore, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
		)
		return postgres.NewPlayerRepository(pool.DB()), pool.Close, nil
	case config.BackendFile:
		store, err := statsfile.New(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening stats file: %w", err)
		}
		logger.Info("stats file opened",
			zap.String("path", cfg.Storage.FilePath),
			zap.Int("players", len(store.All())),
		)
		return store, func() {}, nil
	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}

func provideClock(cfg config.Config, logger *zap.Logger) *round.Clock {
	return round.NewClock(round.Settings{
		Lobby:    cfg.Game.LobbyDuration,
		Duration: cfg.Game.RoundDuration,
		Cooldown: cfg.Game.JumpCooldown,
		Tick:     cfg.Game.TickInterval,
	}, logger)
}

func provideParser(cfg config.Config) command.Parser {
	return command.NewParser(cfg.Game.MaxArguments)
}

func provideCatalog(cfg config.Config) (*character.Catalog, error) {
	if cfg.Game.CharactersFile == "" {
		return character.Default(), nil
	}
	catalog, err := character.Load(cfg.Game.CharactersFile)
	if err != nil {
		return nil, fmt.Errorf("loading characters: %w", err)
	}
	return catalog, nil
}

func provideDispatcher(
	registry *command.Registry,
	parser command.Parser,
	roster *session.Manager,
	clock *round.Clock,
	src rng.Source,
	catalog *character.Catalog,
	logger *zap.Logger,
) *gameserver.Dispatcher {
	return gameserver.NewDispatcher(registry, parser, roster, clock, src, catalog, logger)
}

func provideFeed(logger *zap.Logger) (*gameserver.Feed, func()) {
	feed := gameserver.NewFeed(256, logger)
	return feed, feed.Close
}

func provideClimber(feed *gameserver.Feed) *gameserver.Climber {
	return gameserver.NewClimber(feed)
}

// provideHooks loads the Lua reaction scripts. An empty script directory
// yields a nil Hooks, which disables reactions.
func provideHooks(cfg config.Config, roster *session.Manager, logger *zap.Logger) (gameserver.Hooks, func(), error) {
	if cfg.Game.ScriptDir == "" {
		return nil, func() {}, nil
	}
	mgr := scripting.NewManager(logger)
	mgr.GetPlayer = func(id string) *scripting.PlayerInfo {
		p, ok := roster.Get(id)
		if !ok {
			return nil
		}
		return &scripting.PlayerInfo{
			ID:         p.ID,
			Name:       p.Name,
			Wins:       p.Wins,
			Jumps:      p.Jumps,
			BestHeight: p.BestHeight,
			Character:  p.Character,
		}
	}
	mgr.CountPlayers = roster.Count
	if err := mgr.LoadDir(cfg.Game.ScriptDir, cfg.Game.ScriptInstructionLimit); err != nil {
		mgr.Close()
		return nil, nil, fmt.Errorf("loading scripts: %w", err)
	}
	return mgr, mgr.Close, nil
}

// provideGame builds the Game and attaches it to the Climber so avatar
// heights reach the round clock.
func provideGame(
	dispatcher *gameserver.Dispatcher,
	roster *session.Manager,
	clock *round.Clock,
	climber *gameserver.Climber,
	announcer gameserver.Announcer,
	hooks gameserver.Hooks,
	cfg config.Config,
	logger *zap.Logger,
) *gameserver.Game {
	g := gameserver.NewGame(dispatcher, roster, clock, climber, announcer, hooks, gameserver.Settings{
		QueueSize:     cfg.Chat.QueueSize,
		RatePerSecond: cfg.Chat.RatePerSecond,
		Burst:         cfg.Chat.Burst,
	}, logger)
	climber.Attach(g)
	return g
}

func provideLogAnnouncer(logger *zap.Logger) gameserver.Announcer {
	return gameserver.LogAnnouncer{Logger: logger}
}
