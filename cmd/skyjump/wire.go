//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/skyjump/internal/config"
	"github.com/cory-johannsen/skyjump/internal/gameserver"
)

// initializeServer wires a game that announces through the logger.
func initializeServer(ctx context.Context, cfg config.Config) (*app, func(), error) {
	wire.Build(gameSet, provideLogAnnouncer)
	return nil, nil, nil
}

// initializeSim wires a game that announces through announcer.
func initializeSim(ctx context.Context, cfg config.Config, announcer gameserver.Announcer) (*app, func(), error) {
	wire.Build(gameSet)
	return nil, nil, nil
}
