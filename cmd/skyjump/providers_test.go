package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skyjump/internal/config"
	"github.com/cory-johannsen/skyjump/internal/game/session"
	"github.com/cory-johannsen/skyjump/internal/storage/statsfile"
)

func TestProvideStore_Memory(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Backend = config.BackendMemory

	store, cleanup, err := provideStore(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &session.MemoryStore{}, store)
}

func TestProvideStore_File(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Backend = config.BackendFile
	cfg.Storage.FilePath = filepath.Join(t.TempDir(), "players.json")

	store, cleanup, err := provideStore(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &statsfile.Store{}, store)
}

func TestProvideCatalog(t *testing.T) {
	cfg := config.Defaults()
	catalog, err := provideCatalog(cfg)
	require.NoError(t, err)
	assert.Equal(t, 18, catalog.Size())

	cfg.Game.CharactersFile = "../../content/characters.yaml"
	catalog, err = provideCatalog(cfg)
	require.NoError(t, err)
	assert.Equal(t, 18, catalog.Size())

	cfg.Game.CharactersFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = provideCatalog(cfg)
	assert.Error(t, err)
}

func TestProvideHooks_DisabledWithoutDir(t *testing.T) {
	cfg := config.Defaults()
	roster := session.NewManager(nil, zaptest.NewLogger(t))

	hooks, cleanup, err := provideHooks(cfg, roster, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, hooks)
}

func TestProvideHooks_LoadsScripts(t *testing.T) {
	cfg := config.Defaults()
	cfg.Game.ScriptDir = "../../content/scripts"
	roster := session.NewManager(nil, zaptest.NewLogger(t))

	hooks, cleanup, err := provideHooks(cfg, roster, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, hooks)

	msg, err := hooks.CallHook("on_join", "zara", true)
	require.NoError(t, err)
	assert.Equal(t, "welcome back, zara!", msg)
}

func TestProvideHooks_BadDir(t *testing.T) {
	cfg := config.Defaults()
	cfg.Game.ScriptDir = filepath.Join(t.TempDir(), "nope")
	roster := session.NewManager(nil, zaptest.NewLogger(t))

	_, _, err := provideHooks(cfg, roster, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestInitializeSim_WiresClimberToClock(t *testing.T) {
	cfg := simTestConfig()
	var out bytes.Buffer
	r := newRenderer(&out)

	a, cleanup, err := initializeSim(context.Background(), cfg, r)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, a.game)
	assert.NotNil(t, a.feed)
	assert.Equal(t, cfg, a.cfg)
}
