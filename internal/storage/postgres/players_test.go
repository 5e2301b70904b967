package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skyjump/internal/game/session"
	"github.com/cory-johannsen/skyjump/internal/storage/postgres"
	"github.com/cory-johannsen/skyjump/internal/testutil"
)

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func TestPlayerRepository_LoadMissing(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))

	_, err := repo.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, postgres.ErrPlayerNotFound)
	assert.ErrorIs(t, err, session.ErrPlayerNotFound)
}

func TestPlayerRepository_SaveAndLoad(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	p := session.PlayerData{
		ID:          uniqueID("p"),
		Name:        "Zara",
		NameColor:   "ff0000",
		GlowColor:   "00ff00",
		Glowing:     true,
		Character:   4,
		Privileged:  true,
		Wins:        2,
		Jumps:       17,
		BestHeight:  88,
		LastRoundID: "round-1",
	}
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.NameColor, got.NameColor)
	assert.Equal(t, p.GlowColor, got.GlowColor)
	assert.Equal(t, 4, got.Character)
	assert.Equal(t, 2, got.Wins)
	assert.Equal(t, 17, got.Jumps)
	assert.Equal(t, 88, got.BestHeight)
	assert.Equal(t, "round-1", got.LastRoundID)
	assert.True(t, got.Glowing)
	assert.False(t, got.Privileged, "privilege is not persisted")
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestPlayerRepository_SaveUpserts(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	id := uniqueID("p")
	require.NoError(t, repo.Save(ctx, session.PlayerData{ID: id, Name: "Old", Wins: 1}))
	require.NoError(t, repo.Save(ctx, session.PlayerData{ID: id, Name: "New", Wins: 3}))

	got, err := repo.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, 3, got.Wins)
}

func TestPlayerRepository_SaveRejectsEmptyID(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	assert.Error(t, repo.Save(context.Background(), session.PlayerData{}))
}

func TestPlayerRepository_Top(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	for _, p := range []session.PlayerData{
		{ID: "a", Wins: 1, BestHeight: 50},
		{ID: "b", Wins: 3, BestHeight: 10},
		{ID: "c", Wins: 1, BestHeight: 70},
		{ID: "d", Wins: 0, BestHeight: 99},
	} {
		require.NoError(t, repo.Save(ctx, p))
	}

	top, err := repo.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].ID)
	assert.Equal(t, "c", top[1].ID)
	assert.Equal(t, "a", top[2].ID)
}

func TestPlayerRepository_WithRoster(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, session.PlayerData{ID: "vet", Name: "Vet", Wins: 5}))

	roster := session.NewManager(repo, zaptest.NewLogger(t))
	p, created := roster.Join(ctx, "vet", "Vet", "ffffff", false)
	assert.True(t, created)
	assert.Equal(t, 5, p.Wins)
}

// Property: any saved record loads back with the same persisted fields.
func TestPropertyPlayerRepository_RoundTrip(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		p := session.PlayerData{
			ID:         rapid.StringMatching(`[a-z0-9_]{1,24}`).Draw(rt, "id"),
			Name:       rapid.StringMatching(`[A-Za-z0-9_]{1,25}`).Draw(rt, "name"),
			Character:  rapid.IntRange(0, 18).Draw(rt, "character"),
			Wins:       rapid.IntRange(0, 1000).Draw(rt, "wins"),
			BestHeight: rapid.IntRange(0, 100000).Draw(rt, "height"),
		}
		if err := repo.Save(ctx, p); err != nil {
			rt.Fatalf("Save: %v", err)
		}
		got, err := repo.Load(ctx, p.ID)
		if err != nil {
			rt.Fatalf("Load: %v", err)
		}
		if got.Name != p.Name || got.Character != p.Character || got.Wins != p.Wins || got.BestHeight != p.BestHeight {
			rt.Fatalf("round trip mismatch: saved %+v, loaded %+v", p, got)
		}
	})
}
