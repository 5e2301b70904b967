package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skyjump/internal/config"
)

const transcript = `alice#ff0000: join
bob: join
alice: u
bob: j 10 50
carol: j
bob*: glow 00ff00
`

func simTestConfig() config.Config {
	return simConfig(config.Defaults(), time.Hour, 0, false)
}

func TestSimConfig_DisablesPersistenceAndLobby(t *testing.T) {
	cfg := simTestConfig()
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)
	assert.Zero(t, cfg.Game.LobbyDuration)
	assert.Zero(t, cfg.Chat.RatePerSecond)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", simConfig(config.Defaults(), time.Hour, 0, true).Logging.Level)
}

func TestRunSim_PlaysARound(t *testing.T) {
	var out bytes.Buffer
	err := runSim(context.Background(), simTestConfig(), strings.NewReader(transcript), &out)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "» jump!")
	assert.Contains(t, got, "alice spawns as")
	assert.Contains(t, got, "alice jumps: angle 90, power 100")
	assert.Contains(t, got, "bob jumps: angle 100, power 50")
	assert.Contains(t, got, "bob glows #00ff00")
	assert.NotContains(t, got, "carol")
	assert.Contains(t, got, "» alice wins at height 100!")
	assert.Contains(t, got, "standings")
	assert.Contains(t, got, "1. alice")
	assert.Contains(t, got, "wins 1  jumps 1  best 100")
	assert.Contains(t, got, "2. bob")
}

func TestRunSim_WithScripts(t *testing.T) {
	cfg := simTestConfig()
	cfg.Game.ScriptDir = "../../content/scripts"

	var out bytes.Buffer
	err := runSim(context.Background(), cfg, strings.NewReader(transcript), &out)
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "alice has joined the climb")
	assert.Contains(t, got, "alice wins at height 100 (1 total wins)")
}

func TestRunSim_EmptyTranscript(t *testing.T) {
	var out bytes.Buffer
	err := runSim(context.Background(), simTestConfig(), strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "round over: nobody climbed")
	assert.Contains(t, out.String(), "nobody joined")
}

func TestRunSim_CooldownBlocksRepeatJumps(t *testing.T) {
	cfg := simConfig(config.Defaults(), time.Hour, time.Hour, false)

	var out bytes.Buffer
	err := runSim(context.Background(), cfg, strings.NewReader("amy: join\namy: u\namy: u\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out.String(), "amy jumps:"))
}
